// Package packlist moves whole vehicle inventories in and out of the
// catalog as CSV: a tolerant importer that resolves or creates the
// vehicle/place chain per row, and the inverse export projection.
package packlist

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kasperbn/packlist/internal/catalog"
	"github.com/kasperbn/packlist/internal/models"
	"golang.org/x/text/encoding/charmap"
	"gorm.io/gorm"
)

// Options controls one import run.
type Options struct {
	// VehicleID selects the context vehicle that 4-column files (and rows
	// with a blank vehicle cell) import into. Zero means no context vehicle.
	VehicleID uint
	// DefaultName is the fallback vehicle name when there is no context
	// vehicle, typically derived from the uploaded filename.
	DefaultName string
	// Delimiter forces the field separator. Zero auto-detects from the
	// header line, preferring ';' when both ';' and ',' occur.
	Delimiter rune
}

// SkippedRow records one silently dropped input row. Row is the physical
// line number in the uploaded file, counting the header and blank lines.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Report summarizes a committed import.
type Report struct {
	Imported int          `json:"imported"`
	Skipped  []SkippedRow `json:"skipped,omitempty"`
	Vehicles []string     `json:"vehicles"`
	// VehicleID is the vehicle of the last imported row, for the
	// post-import redirect.
	VehicleID uint `json:"vehicle_id"`
}

// Accepted header columns. Each accepts the English name and the legacy
// Danish spelling found in packlists exported by the old system.
var headerSynonyms = map[string][]string{
	"vehicle":  {"vehicle", "brandbil"},
	"place":    {"place", "rum/låge", "rum"},
	"item":     {"item", "udstyr"},
	"quantity": {"quantity", "antal"},
	"note":     {"note"},
}

var (
	layout5 = []string{"vehicle", "place", "item", "quantity", "note"}
	layout4 = []string{"place", "item", "quantity", "note"}
)

type Importer struct {
	store *catalog.Store
}

func NewImporter(store *catalog.Store) *Importer { return &Importer{store: store} }

// Import parses the CSV stream and populates the catalog. The header is
// validated before anything is written; all accepted rows commit in one
// transaction. Re-importing the same file appends duplicate items, it never
// merges.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts Options) (*Report, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = detectDelimiter(text)
	}
	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &catalog.ValidationError{Field: "file", Reason: "empty"}
	}
	if err != nil {
		return nil, &catalog.ValidationError{Field: "file", Reason: "malformed csv: " + err.Error()}
	}
	layout, err := matchHeader(header)
	if err != nil {
		return nil, err
	}

	// Records are read one at a time so each keeps its physical line number;
	// the csv reader drops blank lines, which would skew index-based counting.
	var rows []csvRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &catalog.ValidationError{Field: "file", Reason: "malformed csv: " + err.Error()}
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, csvRow{fields: rec, line: line})
	}

	report := &Report{}
	err = im.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return im.importRows(ctx, catalog.NewStore(tx), rows, layout, opts, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// csvRow is one data record with the line it occupied in the input.
type csvRow struct {
	fields []string
	line   int
}

func (im *Importer) importRows(ctx context.Context, store *catalog.Store, rows []csvRow, layout []string, opts Options, report *Report) error {
	fileDefault := strings.TrimSpace(opts.DefaultName)
	if opts.VehicleID != 0 {
		v, err := store.GetVehicle(ctx, opts.VehicleID)
		if err != nil {
			return err
		}
		fileDefault = v.Name
	}
	if fileDefault == "" {
		fileDefault = "Untitled"
	}

	vehicles := map[string]*models.Vehicle{}
	places := map[string]*models.Place{}

	for _, row := range rows {
		rowNum := row.line
		fields := padRow(row.fields, len(layout))
		if blankRow(fields) {
			continue
		}

		var vehicleName, placeName, itemName, qtyRaw, note string
		if len(layout) == 5 {
			vehicleName, placeName, itemName, qtyRaw, note = fields[0], fields[1], fields[2], fields[3], fields[4]
		} else {
			placeName, itemName, qtyRaw, note = fields[0], fields[1], fields[2], fields[3]
		}
		if vehicleName == "" {
			vehicleName = fileDefault
		}
		if placeName == "" || itemName == "" {
			reason := "blank place"
			if placeName != "" {
				reason = "blank item"
			}
			report.Skipped = append(report.Skipped, SkippedRow{Row: rowNum, Reason: reason})
			continue
		}

		v, err := resolveVehicle(ctx, store, vehicles, vehicleName, report)
		if err != nil {
			return err
		}
		p, err := resolvePlace(ctx, store, places, v.ID, placeName)
		if err != nil {
			return err
		}
		if _, err := store.CreateItem(ctx, p.ID, itemName, parseQuantity(qtyRaw), note); err != nil {
			return err
		}
		report.Imported++
		report.VehicleID = v.ID
	}
	return nil
}

func resolveVehicle(ctx context.Context, store *catalog.Store, cache map[string]*models.Vehicle, name string, report *Report) (*models.Vehicle, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if v, ok := cache[key]; ok {
		return v, nil
	}
	v, err := store.FindVehicleByName(ctx, name)
	if errors.Is(err, catalog.ErrNotFound) {
		v, err = store.CreateVehicle(ctx, name, "")
	}
	if err != nil {
		return nil, err
	}
	cache[key] = v
	report.Vehicles = append(report.Vehicles, v.Name)
	return v, nil
}

func resolvePlace(ctx context.Context, store *catalog.Store, cache map[string]*models.Place, vehicleID uint, name string) (*models.Place, error) {
	key := fmt.Sprintf("%d\x00%s", vehicleID, strings.ToLower(strings.TrimSpace(name)))
	if p, ok := cache[key]; ok {
		return p, nil
	}
	p, err := store.FindPlaceByName(ctx, vehicleID, name)
	if errors.Is(err, catalog.ErrNotFound) {
		p, err = store.CreatePlace(ctx, vehicleID, name)
	}
	if err != nil {
		return nil, err
	}
	cache[key] = p
	return p, nil
}

// parseQuantity returns the row quantity, defaulting to 1 on blank or
// anything that is not a non-negative integer.
func parseQuantity(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 1
	}
	return n
}

// decodeText strips a UTF-8 BOM and falls back to Windows-1252 for files
// saved by legacy spreadsheet tools.
func decodeText(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", &catalog.ValidationError{Field: "file", Reason: "undecodable encoding"}
	}
	return string(decoded), nil
}

// detectDelimiter inspects the header line; ';' wins when both candidates
// appear, matching the spreadsheet exports this importer has to accept.
func detectDelimiter(text string) rune {
	header := text
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		header = text[:idx]
	}
	if strings.ContainsRune(header, ';') {
		return ';'
	}
	return ','
}

func matchHeader(header []string) ([]string, error) {
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for _, layout := range [][]string{layout5, layout4} {
		if headerMatches(cells, layout) {
			return layout, nil
		}
	}
	return nil, &catalog.ValidationError{
		Field:  "header",
		Reason: "expected Vehicle,Place,Item,Quantity,Note or Place,Item,Quantity,Note",
	}
}

func headerMatches(cells, layout []string) bool {
	if len(cells) != len(layout) {
		return false
	}
	for i, col := range layout {
		ok := false
		for _, syn := range headerSynonyms[col] {
			if cells[i] == syn {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func padRow(row []string, n int) []string {
	fields := make([]string, n)
	for i := range fields {
		if i < len(row) {
			fields[i] = strings.TrimSpace(row[i])
		}
	}
	return fields
}

func blankRow(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
