// Package catalog is the entity graph behind the web layer: vehicles owning
// ordered places, places owning ordered items, vehicles owning documents.
// All multi-step writes are transactional; sibling order is maintained by
// the move/append operations in ordering.go.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/kasperbn/packlist/internal/models"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle for collaborators that run their own
// transactions (the importer).
func (s *Store) DB() *gorm.DB { return s.db }

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Reason: "required"}
	}
	return name, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Vehicles
// ─────────────────────────────────────────────────────────────────────────────

// CreateVehicle inserts a vehicle at the end of the display order. Names are
// unique case-insensitively.
func (s *Store) CreateVehicle(ctx context.Context, name, description string) (*models.Vehicle, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	v := models.Vehicle{Name: name, Description: strings.TrimSpace(description)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Vehicle{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}
		sort, err := nextSort(tx, &models.Vehicle{}, "")
		if err != nil {
			return err
		}
		v.Sort = sort
		return tx.Create(&v).Error
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// RenameVehicle applies the same trim/uniqueness rules as creation.
func (s *Store) RenameVehicle(ctx context.Context, id uint, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v models.Vehicle
		if err := tx.First(&v, id).Error; err != nil {
			return asNotFound(err)
		}
		var count int64
		if err := tx.Model(&models.Vehicle{}).Where("LOWER(name) = LOWER(?) AND id <> ?", name, id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}
		return tx.Model(&v).Update("name", name).Error
	})
}

// SetDescription replaces the vehicle's free-text description.
func (s *Store) SetDescription(ctx context.Context, id uint, text string) error {
	res := s.db.WithContext(ctx).Model(&models.Vehicle{}).Where("id = ?", id).Update("description", strings.TrimSpace(text))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVehicle removes the vehicle and everything it owns in one
// transaction: items, places, documents, then the vehicle itself.
func (s *Store) DeleteVehicle(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v models.Vehicle
		if err := tx.First(&v, id).Error; err != nil {
			return asNotFound(err)
		}
		if err := tx.Where("place_id IN (?)", tx.Model(&models.Place{}).Select("id").Where("vehicle_id = ?", id)).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("vehicle_id = ?", id).Delete(&models.Place{}).Error; err != nil {
			return err
		}
		if err := tx.Where("vehicle_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		return tx.Delete(&v).Error
	})
}

// ListVehicles returns all vehicles in display order.
func (s *Store) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	var vs []models.Vehicle
	err := s.db.WithContext(ctx).Order("sort, name, id").Find(&vs).Error
	return vs, err
}

// GetVehicle loads one vehicle with its places, items and documents, all in
// display order.
func (s *Store) GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	err := s.db.WithContext(ctx).
		Preload("Places", func(db *gorm.DB) *gorm.DB { return db.Order("sort, name, id") }).
		Preload("Places.Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort, name, id") }).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("original_name, id") }).
		First(&v, id).Error
	if err != nil {
		return nil, asNotFound(err)
	}
	return &v, nil
}

// FindVehicleByName resolves a vehicle case-insensitively.
func (s *Store) FindVehicleByName(ctx context.Context, name string) (*models.Vehicle, error) {
	var v models.Vehicle
	err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).First(&v).Error
	if err != nil {
		return nil, asNotFound(err)
	}
	return &v, nil
}

// ItemCounts returns the number of items per vehicle, for the index view.
func (s *Store) ItemCounts(ctx context.Context) (map[uint]int64, error) {
	type row struct {
		VehicleID uint
		N         int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&models.Item{}).
		Select("places.vehicle_id, COUNT(*) AS n").
		Joins("JOIN places ON places.id = items.place_id").
		Group("places.vehicle_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.VehicleID] = r.N
	}
	return counts, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Places
// ─────────────────────────────────────────────────────────────────────────────

// CreatePlace appends a place to the vehicle's display order.
func (s *Store) CreatePlace(ctx context.Context, vehicleID uint, name string) (*models.Place, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	p := models.Place{Name: name, VehicleID: vehicleID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v models.Vehicle
		if err := tx.First(&v, vehicleID).Error; err != nil {
			return asNotFound(err)
		}
		sort, err := nextSort(tx, &models.Place{}, "vehicle_id = ?", vehicleID)
		if err != nil {
			return err
		}
		p.Sort = sort
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RenamePlace returns the owning vehicle id so the caller can redirect.
func (s *Store) RenamePlace(ctx context.Context, id uint, name string) (uint, error) {
	name, err := cleanName(name)
	if err != nil {
		return 0, err
	}
	var p models.Place
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return 0, asNotFound(err)
	}
	if err := s.db.WithContext(ctx).Model(&p).Update("name", name).Error; err != nil {
		return 0, err
	}
	return p.VehicleID, nil
}

// DeletePlace cascades to the place's items and returns the owning vehicle id.
func (s *Store) DeletePlace(ctx context.Context, id uint) (uint, error) {
	var vehicleID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Place
		if err := tx.First(&p, id).Error; err != nil {
			return asNotFound(err)
		}
		vehicleID = p.VehicleID
		if err := tx.Where("place_id = ?", id).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
	return vehicleID, err
}

// ListPlaces returns a vehicle's places in display order.
func (s *Store) ListPlaces(ctx context.Context, vehicleID uint) ([]models.Place, error) {
	var ps []models.Place
	err := s.db.WithContext(ctx).Where("vehicle_id = ?", vehicleID).Order("sort, name, id").Find(&ps).Error
	return ps, err
}

// GetPlace loads one place.
func (s *Store) GetPlace(ctx context.Context, id uint) (*models.Place, error) {
	var p models.Place
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &p, nil
}

// FindPlaceByName resolves a place case-insensitively within one vehicle.
func (s *Store) FindPlaceByName(ctx context.Context, vehicleID uint, name string) (*models.Place, error) {
	var p models.Place
	err := s.db.WithContext(ctx).
		Where("vehicle_id = ? AND LOWER(name) = LOWER(?)", vehicleID, strings.TrimSpace(name)).
		Order("id").First(&p).Error
	if err != nil {
		return nil, asNotFound(err)
	}
	return &p, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Items
// ─────────────────────────────────────────────────────────────────────────────

// CreateItem appends an item to the place's display order. Quantity below
// zero is rejected; zero is allowed (out of stock).
func (s *Store) CreateItem(ctx context.Context, placeID uint, name string, quantity int, note string) (*models.Item, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	it := models.Item{Name: name, Quantity: quantity, Note: strings.TrimSpace(note), PlaceID: placeID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Place
		if err := tx.First(&p, placeID).Error; err != nil {
			return asNotFound(err)
		}
		sort, err := nextSort(tx, &models.Item{}, "place_id = ?", placeID)
		if err != nil {
			return err
		}
		it.Sort = sort
		return tx.Create(&it).Error
	})
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateItem edits name, quantity and note, and optionally moves the item to
// another place (newPlaceID != 0), where it appends at the end. Returns the
// owning vehicle id after the update.
func (s *Store) UpdateItem(ctx context.Context, id uint, name string, quantity int, note string, newPlaceID uint) (uint, error) {
	name, err := cleanName(name)
	if err != nil {
		return 0, err
	}
	if quantity < 0 {
		return 0, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	var vehicleID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.Item
		if err := tx.First(&it, id).Error; err != nil {
			return asNotFound(err)
		}
		it.Name = name
		it.Quantity = quantity
		it.Note = strings.TrimSpace(note)
		if newPlaceID != 0 && newPlaceID != it.PlaceID {
			var p models.Place
			if err := tx.First(&p, newPlaceID).Error; err != nil {
				return asNotFound(err)
			}
			sort, err := nextSort(tx, &models.Item{}, "place_id = ?", newPlaceID)
			if err != nil {
				return err
			}
			it.PlaceID = newPlaceID
			it.Sort = sort
		}
		if err := tx.Save(&it).Error; err != nil {
			return err
		}
		return tx.Model(&models.Place{}).Where("id = ?", it.PlaceID).Select("vehicle_id").Scan(&vehicleID).Error
	})
	return vehicleID, err
}

// DeleteItem returns the id of the nearest surviving ancestor (the vehicle).
func (s *Store) DeleteItem(ctx context.Context, id uint) (uint, error) {
	var vehicleID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.Item
		if err := tx.First(&it, id).Error; err != nil {
			return asNotFound(err)
		}
		if err := tx.Model(&models.Place{}).Where("id = ?", it.PlaceID).Select("vehicle_id").Scan(&vehicleID).Error; err != nil {
			return err
		}
		return tx.Delete(&it).Error
	})
	return vehicleID, err
}

// ListItems returns a place's items in display order.
func (s *Store) ListItems(ctx context.Context, placeID uint) ([]models.Item, error) {
	var its []models.Item
	err := s.db.WithContext(ctx).Where("place_id = ?", placeID).Order("sort, name, id").Find(&its).Error
	return its, err
}

// GetItem loads one item.
func (s *Store) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	var it models.Item
	if err := s.db.WithContext(ctx).First(&it, id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &it, nil
}

// AttachPhoto overwrites the item's photo reference. The previous blob is
// not reclaimed here.
func (s *Store) AttachPhoto(ctx context.Context, itemID uint, ref string) (uint, error) {
	var vehicleID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.Item
		if err := tx.First(&it, itemID).Error; err != nil {
			return asNotFound(err)
		}
		if err := tx.Model(&it).Update("photo_path", ref).Error; err != nil {
			return err
		}
		return tx.Model(&models.Place{}).Where("id = ?", it.PlaceID).Select("vehicle_id").Scan(&vehicleID).Error
	})
	return vehicleID, err
}

// ─────────────────────────────────────────────────────────────────────────────
// Documents
// ─────────────────────────────────────────────────────────────────────────────

// AttachDocument records an uploaded file against a vehicle.
func (s *Store) AttachDocument(ctx context.Context, vehicleID uint, ref, originalName string) (*models.Document, error) {
	originalName = strings.TrimSpace(originalName)
	if originalName == "" {
		originalName = ref
	}
	doc := models.Document{VehicleID: vehicleID, OriginalName: originalName, StoredName: ref}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v models.Vehicle
		if err := tx.First(&v, vehicleID).Error; err != nil {
			return asNotFound(err)
		}
		return tx.Create(&doc).Error
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocument loads one document.
func (s *Store) GetDocument(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &doc, nil
}

// DeleteDocument returns the owning vehicle id.
func (s *Store) DeleteDocument(ctx context.Context, id uint) (uint, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return 0, asNotFound(err)
	}
	if err := s.db.WithContext(ctx).Delete(&doc).Error; err != nil {
		return 0, err
	}
	return doc.VehicleID, nil
}
