package handlers

import (
	"net/http"

	"github.com/kasperbn/packlist/internal/auth"
	"github.com/kasperbn/packlist/internal/catalog"
	"github.com/kasperbn/packlist/internal/httpx"
	"github.com/kasperbn/packlist/internal/validation"
	"github.com/kasperbn/packlist/internal/view"
)

type VehicleHandler struct {
	Store *catalog.Store
}

func NewVehicleHandler(store *catalog.Store) *VehicleHandler { return &VehicleHandler{Store: store} }

// Index is the home page: every vehicle with its places and item counts.
func (h *VehicleHandler) Index(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Store.ListVehicles(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	counts, err := h.Store.ItemCounts(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
		return
	}
	data := map[string]any{
		"Vehicles":   vehicles,
		"ItemCounts": counts,
		"Logged":     auth.IsAuthenticated(r.Context()),
		"Msg":        r.URL.Query().Get("msg"),
	}
	if err := view.Render(w, r, "index.html", data); err != nil {
		http.Error(w, "render: "+err.Error(), http.StatusInternalServerError)
	}
}

// List renders the vehicle management page.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Store.ListVehicles(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
		return
	}
	data := map[string]any{
		"Vehicles": vehicles,
		"Logged":   auth.IsAuthenticated(r.Context()),
		"Msg":      r.URL.Query().Get("msg"),
	}
	if err := view.Render(w, r, "vehicles.html", data); err != nil {
		http.Error(w, "render: "+err.Error(), http.StatusInternalServerError)
	}
}

// Detail renders one vehicle with ordered places, items and documents.
func (h *VehicleHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	v, err := h.Store.GetVehicle(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, v)
		return
	}
	data := map[string]any{
		"Vehicle": v,
		"Logged":  auth.IsAuthenticated(r.Context()),
		"Msg":     r.URL.Query().Get("msg"),
	}
	if err := view.Render(w, r, "vehicle.html", data); err != nil {
		http.Error(w, "render: "+err.Error(), http.StatusInternalServerError)
	}
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	name := r.FormValue("name")
	vio := validation.Violations{}
	validation.Required("name", name, vio)
	validation.MaxLen("name", name, 200, vio)
	if !vio.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", vio)
			return
		}
		redirectMsg(w, r, "/vehicles", "A vehicle needs a name")
		return
	}
	v, err := h.Store.CreateVehicle(r.Context(), name, r.FormValue("description"))
	if err != nil {
		fail(w, r, err, "/vehicles")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, v)
		return
	}
	http.Redirect(w, r, "/vehicles", http.StatusSeeOther)
}

func (h *VehicleHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	if err := h.Store.RenameVehicle(r.Context(), id, r.FormValue("name")); err != nil {
		fail(w, r, err, vehiclePath(id))
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"renamed": id})
		return
	}
	http.Redirect(w, r, vehiclePath(id), http.StatusSeeOther)
}

func (h *VehicleHandler) SetDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	if err := h.Store.SetDescription(r.Context(), id, r.FormValue("description")); err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"updated": id})
		return
	}
	http.Redirect(w, r, vehiclePath(id), http.StatusSeeOther)
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	if err := h.Store.DeleteVehicle(r.Context(), id); err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
		return
	}
	redirectMsg(w, r, "/", "Vehicle deleted")
}

func (h *VehicleHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	dir, err := catalog.ParseDirection(r.FormValue("direction"))
	if err != nil {
		fail(w, r, err, "/vehicles")
		return
	}
	if err := h.Store.MoveVehicle(r.Context(), id, dir); err != nil {
		fail(w, r, err, "/vehicles")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"moved": id})
		return
	}
	http.Redirect(w, r, "/vehicles", http.StatusSeeOther)
}
