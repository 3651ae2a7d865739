package models

import (
	"github.com/shopspring/decimal"
)

// FishType represents a fish species in the catalog.
// Zones is not a column: repositories fill it from the fish/zone link table.
type FishType struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"not null"`
	Description string          `gorm:"not null"`
	PricePerKg  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Family      string
	HabitatType string
	ImagePath   string
	Zones       []Ref `gorm:"-"`
}

func (f *FishType) TableName() string {
	return "fish_types"
}

// ZoneIDs returns the ids of the linked fishing zones.
func (f *FishType) ZoneIDs() []uint {
	return refIDs(f.Zones)
}

func (f *FishType) Validate() FieldErrors {
	errs := FieldErrors{}
	if f.Name == "" {
		errs.Add("name", "Name is required")
	}
	if f.Description == "" {
		errs.Add("description", "Description is required")
	}
	if !f.PricePerKg.IsPositive() {
		errs.Add("price_per_kg", "Price must be positive")
	}
	return errs
}
