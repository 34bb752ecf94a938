package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/kasperbn/packlist/internal/blob"
	"github.com/kasperbn/packlist/internal/catalog"
	"github.com/kasperbn/packlist/internal/httpx"
	"github.com/sirupsen/logrus"
)

// maxUploadBytes bounds multipart uploads (photos, documents, CSV files).
const maxUploadBytes = 32 << 20

type ItemHandler struct {
	Store *catalog.Store
	Blobs blob.Store
}

func NewItemHandler(store *catalog.Store, blobs blob.Store) *ItemHandler {
	return &ItemHandler{Store: store, Blobs: blobs}
}

// Add creates an item from the vehicle detail form. The place id travels in
// the form body, matching the legacy route shape.
func (h *ItemHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	placeID, _ := strconv.ParseUint(r.FormValue("place_id"), 10, 64)
	if placeID == 0 {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	it, err := h.Store.CreateItem(r.Context(), uint(placeID), r.FormValue("name"), formQuantity(r), r.FormValue("note"))
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	p, err := h.Store.GetPlace(r.Context(), it.PlaceID)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, it)
		return
	}
	http.Redirect(w, r, vehiclePath(p.VehicleID), http.StatusSeeOther)
}

// Edit updates name, quantity and note, and moves the item to another place
// when the form selects one.
func (h *ItemHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	newPlaceID, _ := strconv.ParseUint(r.FormValue("place_id"), 10, 64)
	vehicleID, err := h.Store.UpdateItem(r.Context(), id, r.FormValue("name"), formQuantity(r), r.FormValue("note"), uint(newPlaceID))
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"updated": id})
		return
	}
	http.Redirect(w, r, vehiclePath(vehicleID), http.StatusSeeOther)
}

func (h *ItemHandler) Move(w http.ResponseWriter, r *http.Request) {
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
	if err := h.Store.MoveItem(r.Context(), id, dir); err != nil {
		fail(w, r, err, "/")
		return
	}
	it, err := h.Store.GetItem(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	p, err := h.Store.GetPlace(r.Context(), it.PlaceID)
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

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	vehicleID, err := h.Store.DeleteItem(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id, "vehicle_id": vehicleID})
		return
	}
	redirectMsg(w, r, vehiclePath(vehicleID), "Item deleted")
}

// UploadPhoto stores the multipart photo and attaches its reference to the
// item, replacing any previous reference.
func (h *ItemHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		fail(w, r, &catalog.ValidationError{Field: "photo", Reason: "required"}, "/")
		return
	}
	defer file.Close()
	ref, err := h.Blobs.Save(r.Context(), header.Filename, file)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	vehicleID, err := h.Store.AttachPhoto(r.Context(), id, ref)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"photo": ref})
		return
	}
	http.Redirect(w, r, vehiclePath(vehicleID), http.StatusSeeOther)
}

// ServePhoto streams a stored photo by its opaque reference.
func (h *ItemHandler) ServePhoto(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")
	if ref == "" {
		http.NotFound(w, r)
		return
	}
	rc, contentType, err := h.Blobs.Open(r.Context(), ref)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		fail(w, r, err, "/")
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		// headers are already out; nothing left to do but log
		logrus.WithError(err).WithField("ref", ref).Error("photo stream failed")
	}
}

// formQuantity parses the quantity field, defaulting to 1 the way the
// importer does for blank or malformed values. Negative values pass through
// so the store can reject them.
func formQuantity(r *http.Request) int {
	raw := r.FormValue("quantity")
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}
