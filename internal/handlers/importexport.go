package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kasperbn/packlist/internal/auth"
	"github.com/kasperbn/packlist/internal/catalog"
	"github.com/kasperbn/packlist/internal/httpx"
	"github.com/kasperbn/packlist/internal/packlist"
	"github.com/kasperbn/packlist/internal/view"
	"github.com/sirupsen/logrus"
)

type ImportExportHandler struct {
	Store    *catalog.Store
	Importer *packlist.Importer
	// Delimiter forces the CSV field separator; zero means auto-detect on
	// import and ',' on export.
	Delimiter rune
}

func NewImportExportHandler(store *catalog.Store, delimiter rune) *ImportExportHandler {
	return &ImportExportHandler{Store: store, Importer: packlist.NewImporter(store), Delimiter: delimiter}
}

// Form renders the upload page with the vehicles selectable as import context.
func (h *ImportExportHandler) Form(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Store.ListVehicles(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	data := map[string]any{
		"Vehicles": vehicles,
		"Logged":   auth.IsAuthenticated(r.Context()),
		"Msg":      r.URL.Query().Get("msg"),
	}
	if err := view.Render(w, r, "import.html", data); err != nil {
		http.Error(w, "render: "+err.Error(), http.StatusInternalServerError)
	}
}

// Import accepts the multipart CSV upload. A bad header aborts before any
// row is written; accepted rows commit as one transaction.
func (h *ImportExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, &catalog.ValidationError{Field: "file", Reason: "required"}, "/import")
		return
	}
	defer file.Close()

	opts := packlist.Options{
		DefaultName: defaultVehicleName(header.Filename),
		Delimiter:   h.Delimiter,
	}
	if v := r.FormValue("vehicle_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			fail(w, r, &catalog.ValidationError{Field: "vehicle_id", Reason: "invalid"}, "/import")
			return
		}
		opts.VehicleID = uint(id)
	}

	report, err := h.Importer.Import(r.Context(), file, opts)
	if err != nil {
		fail(w, r, err, "/import")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, report)
		return
	}
	target := "/"
	if report.VehicleID != 0 {
		target = vehiclePath(report.VehicleID)
	}
	msg := "Imported " + strconv.Itoa(report.Imported) + " items"
	if n := len(report.Skipped); n > 0 {
		msg += " (" + strconv.Itoa(n) + " rows skipped)"
	}
	redirectMsg(w, r, target, msg)
}

// Export streams one vehicle's packlist as a CSV attachment.
func (h *ImportExportHandler) Export(w http.ResponseWriter, r *http.Request) {
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
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(packlist.ExportFilename(v.Name)))
	delim := h.Delimiter
	if delim == 0 {
		delim = ','
	}
	if err := packlist.Export(r.Context(), h.Store, w, id, delim); err != nil {
		// headers are already out; nothing left to do but log
		logrus.WithError(err).WithField("vehicle_id", id).Error("export failed")
	}
}

// defaultVehicleName derives the fallback vehicle name for 4-column files
// from the uploaded filename, the way the legacy importer labeled them.
func defaultVehicleName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return "Untitled"
	}
	return "Import " + base
}
