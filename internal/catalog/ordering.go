package catalog

import (
	"context"
	"fmt"

	"github.com/kasperbn/packlist/internal/models"
	"gorm.io/gorm"
)

// Direction of a sibling move.
type Direction int

const (
	Up Direction = iota
	Down
)

// ParseDirection maps the form value of a move request.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return 0, &ValidationError{Field: "direction", Reason: "must be up or down"}
	}
}

// nextSort computes the append position for a new sibling. Must run inside
// the same transaction as the insert so concurrent appends cannot collide.
func nextSort(tx *gorm.DB, model any, scope string, args ...any) (int, error) {
	var max int
	q := tx.Model(model)
	if scope != "" {
		q = q.Where(scope, args...)
	}
	if err := q.Select("COALESCE(MAX(sort), 0)").Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("next sort: %w", err)
	}
	return max + 1, nil
}

// sibRef is the slice the positional swap operates on: ordered sibling ids
// with their current sort values.
type sibRef struct {
	ID   uint
	Sort int
}

// swapNeighbor exchanges the target's position with its adjacent sibling.
// sibs must already be in display order. Swapping at the boundary is a
// no-op. The whole set is renumbered by position with the two entries
// exchanged, never by exchanging sort values: with tied or gapped sort
// values (legacy data) a value exchange can move the record past more than
// one sibling. Rows already carrying their positional sort are not touched,
// so a move in a clean dense set still writes exactly two rows.
func swapNeighbor(tx *gorm.DB, model any, sibs []sibRef, id uint, dir Direction) error {
	i := -1
	for idx, s := range sibs {
		if s.ID == id {
			i = idx
			break
		}
	}
	if i < 0 {
		return ErrNotFound
	}
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if j < 0 || j >= len(sibs) {
		return nil // already first/last
	}
	order := make([]sibRef, len(sibs))
	copy(order, sibs)
	order[i], order[j] = order[j], order[i]
	for pos, s := range order {
		if s.Sort == pos+1 {
			continue
		}
		if err := tx.Model(model).Where("id = ?", s.ID).Update("sort", pos+1).Error; err != nil {
			return err
		}
	}
	return nil
}

// MoveVehicle exchanges a vehicle's display position with its neighbor.
func (s *Store) MoveVehicle(ctx context.Context, id uint, dir Direction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v models.Vehicle
		if err := tx.First(&v, id).Error; err != nil {
			return asNotFound(err)
		}
		var sibs []models.Vehicle
		if err := tx.Order("sort, name, id").Find(&sibs).Error; err != nil {
			return err
		}
		return swapNeighbor(tx, &models.Vehicle{}, vehicleRefs(sibs), id, dir)
	})
}

// MovePlace exchanges a place's position among the places of its vehicle.
func (s *Store) MovePlace(ctx context.Context, id uint, dir Direction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Place
		if err := tx.First(&p, id).Error; err != nil {
			return asNotFound(err)
		}
		var sibs []models.Place
		if err := tx.Where("vehicle_id = ?", p.VehicleID).Order("sort, name, id").Find(&sibs).Error; err != nil {
			return err
		}
		return swapNeighbor(tx, &models.Place{}, placeRefs(sibs), id, dir)
	})
}

// MoveItem exchanges an item's position among the items of its place.
func (s *Store) MoveItem(ctx context.Context, id uint, dir Direction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.Item
		if err := tx.First(&it, id).Error; err != nil {
			return asNotFound(err)
		}
		var sibs []models.Item
		if err := tx.Where("place_id = ?", it.PlaceID).Order("sort, name, id").Find(&sibs).Error; err != nil {
			return err
		}
		return swapNeighbor(tx, &models.Item{}, itemRefs(sibs), id, dir)
	})
}

func vehicleRefs(vs []models.Vehicle) []sibRef {
	refs := make([]sibRef, len(vs))
	for i, v := range vs {
		refs[i] = sibRef{ID: v.ID, Sort: v.Sort}
	}
	return refs
}

func placeRefs(ps []models.Place) []sibRef {
	refs := make([]sibRef, len(ps))
	for i, p := range ps {
		refs[i] = sibRef{ID: p.ID, Sort: p.Sort}
	}
	return refs
}

func itemRefs(its []models.Item) []sibRef {
	refs := make([]sibRef, len(its))
	for i, it := range its {
		refs[i] = sibRef{ID: it.ID, Sort: it.Sort}
	}
	return refs
}
