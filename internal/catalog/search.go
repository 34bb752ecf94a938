package catalog

import (
	"context"
	"strings"
	"unicode"

	"github.com/kasperbn/packlist/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldMarks strips combining marks so "Gerät" and "Gerat" normalize alike.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize prepares a name or query for matching: lower-case, diacritics
// folded, hyphen/underscore treated as word separators, other punctuation
// dropped, whitespace collapsed.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(foldMarks, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '-' || r == '_':
			b.WriteRune(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SearchResult is one matching item with its ancestry.
type SearchResult struct {
	Item    models.Item
	Place   models.Place
	Vehicle models.Vehicle
}

// Search returns every item whose combined normalized item/place/vehicle
// names contain all query tokens as substrings. An empty query matches
// nothing. vehicleID > 0 restricts results to that vehicle. Results are
// ordered by vehicle, place, item name and deduplicated by (item, place).
func (s *Store) Search(ctx context.Context, query string, vehicleID uint) ([]SearchResult, error) {
	tokens := strings.Fields(Normalize(query))
	if len(tokens) == 0 {
		return nil, nil
	}

	type joined struct {
		ID          uint
		Name        string
		Quantity    int
		Note        string
		Sort        int
		PhotoPath   *string
		PlaceID     uint
		PlaceName   string
		PlaceSort   int
		VehicleID   uint
		VehicleName string
	}
	var rows []joined
	err := s.db.WithContext(ctx).Model(&models.Item{}).
		Select("items.id, items.name, items.quantity, items.note, items.sort, items.photo_path, items.place_id, "+
			"places.name AS place_name, places.sort AS place_sort, places.vehicle_id AS vehicle_id, vehicles.name AS vehicle_name").
		Joins("JOIN places ON places.id = items.place_id").
		Joins("JOIN vehicles ON vehicles.id = places.vehicle_id").
		Order("vehicles.name, places.name, items.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Token matching happens here rather than in SQL: the normalization
	// rules (diacritics, hyphen folding) are not expressible portably
	// across sqlite and postgres.
	seen := make(map[[2]uint]struct{})
	var out []SearchResult
	for _, row := range rows {
		if vehicleID > 0 && row.VehicleID != vehicleID {
			continue
		}
		hay := Normalize(row.Name) + " " + Normalize(row.PlaceName) + " " + Normalize(row.VehicleName)
		ok := true
		for _, t := range tokens {
			if !strings.Contains(hay, t) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		key := [2]uint{row.ID, row.PlaceID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, SearchResult{
			Item:    models.Item{ID: row.ID, Name: row.Name, Quantity: row.Quantity, Note: row.Note, Sort: row.Sort, PhotoPath: row.PhotoPath, PlaceID: row.PlaceID},
			Place:   models.Place{ID: row.PlaceID, Name: row.PlaceName, Sort: row.PlaceSort, VehicleID: row.VehicleID},
			Vehicle: models.Vehicle{ID: row.VehicleID, Name: row.VehicleName},
		})
	}
	return out, nil
}
