package packlist

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kasperbn/packlist/internal/catalog"
)

// Export writes one vehicle's packlist as CSV: one row per item in
// (place order, item order), with the 5-column header the importer accepts.
func Export(ctx context.Context, store *catalog.Store, w io.Writer, vehicleID uint, delimiter rune) error {
	v, err := store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	if err := cw.Write([]string{"Vehicle", "Place", "Item", "Quantity", "Note"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range v.Places {
		for _, it := range p.Items {
			rec := []string{v.Name, p.Name, it.Name, strconv.Itoa(it.Quantity), it.Note}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename builds the attachment filename for a vehicle export.
func ExportFilename(vehicleName string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(vehicleName))
	if slug == "" {
		slug = "vehicle"
	}
	return slug + "_packlist.csv"
}
