package handlers

import (
	"net/http"
	"strconv"

	"github.com/kasperbn/packlist/internal/auth"
	"github.com/kasperbn/packlist/internal/catalog"
	"github.com/kasperbn/packlist/internal/httpx"
	"github.com/kasperbn/packlist/internal/view"
)

type SearchHandler struct {
	Store *catalog.Store
}

func NewSearchHandler(store *catalog.Store) *SearchHandler { return &SearchHandler{Store: store} }

// Search answers GET /search?q=&vehicle=. An empty query renders the page
// with no results.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	var vehicleID uint
	if v := r.URL.Query().Get("vehicle"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			vehicleID = uint(id)
		}
	}
	results, err := h.Store.Search(r.Context(), q, vehicleID)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"results": results, "total": len(results)})
		return
	}
	vehicles, err := h.Store.ListVehicles(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	data := map[string]any{
		"Results":  results,
		"Query":    q,
		"Vehicle":  vehicleID,
		"Vehicles": vehicles,
		"Logged":   auth.IsAuthenticated(r.Context()),
	}
	if err := view.Render(w, r, "search.html", data); err != nil {
		http.Error(w, "render: "+err.Error(), http.StatusInternalServerError)
	}
}
