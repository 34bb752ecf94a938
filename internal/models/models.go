package models

import "time"

// Vehicle is the top-level container. Name uniqueness is enforced
// case-insensitively in the catalog layer; the column constraint is a
// backstop for the exact-match case.
type Vehicle struct {
	ID          uint       `gorm:"primaryKey"`
	Name        string     `gorm:"not null;unique"`
	Sort        int        `gorm:"not null;default:0"`
	Description string     `gorm:"not null;default:''"`
	Places      []Place    `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	Documents   []Document `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Place is a storage location (compartment, locker, shelf) within a vehicle.
// Names are not unique; the importer uses case-insensitive name match within
// one vehicle as its reuse key.
type Place struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Sort      int    `gorm:"not null;default:0"`
	VehicleID uint   `gorm:"not null;index"`
	Items     []Item `gorm:"foreignKey:PlaceID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is a piece of equipment stored in a place.
type Item struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;index"`
	Quantity  int    `gorm:"not null;default:1"`
	Note      string `gorm:"not null;default:''"`
	Sort      int    `gorm:"not null;default:0"`
	PhotoPath *string
	PlaceID   uint `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document is an opaque file attached to a vehicle. Not ordered.
type Document struct {
	ID           uint   `gorm:"primaryKey"`
	VehicleID    uint   `gorm:"not null;index"`
	OriginalName string `gorm:"not null"`
	StoredName   string `gorm:"not null"`
	CreatedAt    time.Time
}

// All lists every model in migration order (parents before children).
func All() []any {
	return []any{&Vehicle{}, &Place{}, &Item{}, &Document{}}
}
