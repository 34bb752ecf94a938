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

type DocumentHandler struct {
	Store *catalog.Store
	Blobs blob.Store
}

func NewDocumentHandler(store *catalog.Store, blobs blob.Store) *DocumentHandler {
	return &DocumentHandler{Store: store, Blobs: blobs}
}

// Upload attaches a multipart file to /vehicle/{id}/documents.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		fail(w, r, &catalog.ValidationError{Field: "document", Reason: "required"}, vehiclePath(vehicleID))
		return
	}
	defer file.Close()
	ref, err := h.Blobs.Save(r.Context(), header.Filename, file)
	if err != nil {
		fail(w, r, err, vehiclePath(vehicleID))
		return
	}
	doc, err := h.Store.AttachDocument(r.Context(), vehicleID, ref, header.Filename)
	if err != nil {
		// the vehicle vanished between upload and attach; drop the blob
		if delErr := h.Blobs.Delete(r.Context(), ref); delErr != nil {
			logrus.WithError(delErr).Warn("orphaned blob cleanup failed")
		}
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, doc)
		return
	}
	http.Redirect(w, r, vehiclePath(vehicleID), http.StatusSeeOther)
}

// Download streams a document with its original filename.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	doc, err := h.Store.GetDocument(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	rc, contentType, err := h.Blobs.Open(r.Context(), doc.StoredName)
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
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(doc.OriginalName))
	if _, err := io.Copy(w, rc); err != nil {
		// headers are already out; nothing left to do but log
		logrus.WithError(err).WithField("document_id", id).Error("document stream failed")
	}
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, catalog.ErrNotFound, "/")
		return
	}
	doc, err := h.Store.GetDocument(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	vehicleID, err := h.Store.DeleteDocument(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if err := h.Blobs.Delete(r.Context(), doc.StoredName); err != nil && !errors.Is(err, blob.ErrNotFound) {
		logrus.WithError(err).Warn("document blob delete failed")
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id, "vehicle_id": vehicleID})
		return
	}
	redirectMsg(w, r, vehiclePath(vehicleID), "Document deleted")
}
