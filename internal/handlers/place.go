package handlers

import (
	"net/http"

	"github.com/kasperbn/packlist/internal/catalog"
	"github.com/kasperbn/packlist/internal/httpx"
)

type PlaceHandler struct {
	Store *catalog.Store
}

func NewPlaceHandler(store *catalog.Store) *PlaceHandler { return &PlaceHandler{Store: store} }

// Add creates a place under /vehicle/{id}/place/add.
func (h *PlaceHandler) Add(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	p, err := h.Store.CreatePlace(r.Context(), vehicleID, r.FormValue("name"))
	if err != nil {
		fail(w, r, err, vehiclePath(vehicleID))
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, p)
		return
	}
	http.Redirect(w, r, vehiclePath(vehicleID), http.StatusSeeOther)
}

func (h *PlaceHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	vehicleID, err := h.Store.RenamePlace(r.Context(), id, r.FormValue("name"))
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"renamed": id})
		return
	}
	http.Redirect(w, r, vehiclePath(vehicleID), http.StatusSeeOther)
}

func (h *PlaceHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	dir, err := catalog.ParseDirection(r.FormValue("direction"))
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if err := h.Store.MovePlace(r.Context(), id, dir); err != nil {
		fail(w, r, err, "/")
		return
	}
	// look up the owner for the redirect after the swap
	p, err := h.Store.GetPlace(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"moved": id})
		return
	}
	http.Redirect(w, r, vehiclePath(p.VehicleID), http.StatusSeeOther)
}

func (h *PlaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	vehicleID, err := h.Store.DeletePlace(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id, "vehicle_id": vehicleID})
		return
	}
	redirectMsg(w, r, vehiclePath(vehicleID), "Place deleted")
}
