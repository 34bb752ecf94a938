// Package handlers is the HTTP boundary: form/JSON parsing, error-to-redirect
// mapping and template rendering around the catalog, importer and blob store.
package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kasperbn/packlist/internal/catalog"
	"github.com/kasperbn/packlist/internal/httpx"
	"github.com/sirupsen/logrus"
)

// pathID parses the {id} segment of the matched route.
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// redirectMsg sends the POST-redirect-GET response with a flash message.
func redirectMsg(w http.ResponseWriter, r *http.Request, target, msg string) {
	if msg != "" {
		target += "?msg=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// fail recovers a store error at the boundary: JSON clients get the mapped
// status; browsers get a flash message and a redirect to a safe fallback.
func fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var ve *catalog.ValidationError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		redirectMsg(w, r, fallback, "Not found")
	case errors.Is(err, catalog.ErrConflict):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusConflict, "name_already_exists", nil)
			return
		}
		redirectMsg(w, r, fallback, "Name already exists")
	case errors.As(err, &ve):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{ve.Field: ve.Reason})
			return
		}
		redirectMsg(w, r, fallback, "Invalid "+ve.Field+": "+ve.Reason)
	default:
		logrus.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func vehiclePath(id uint) string {
	return "/vehicle/" + strconv.FormatUint(uint64(id), 10)
}
