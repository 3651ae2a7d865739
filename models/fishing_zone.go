package models

import "math"

// FishingZone represents a body of water or sea area where fish are caught.
type FishingZone struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	ImagePath   string
	Latitude    float64 `gorm:"not null"`
	Longitude   float64 `gorm:"not null"`
	FishTypes   []Ref   `gorm:"-"`
}

func (z *FishingZone) TableName() string {
	return "fishing_zones"
}

func (z *FishingZone) FishTypeIDs() []uint {
	return refIDs(z.FishTypes)
}

func (z *FishingZone) Validate() FieldErrors {
	errs := FieldErrors{}
	if z.Name == "" {
		errs.Add("name", "Name is required")
	}
	if !inRange(z.Latitude, 90) {
		errs.Add("latitude", "Latitude must be between -90 and 90")
	}
	if !inRange(z.Longitude, 180) {
		errs.Add("longitude", "Longitude must be between -180 and 180")
	}
	return errs
}

// inRange reports whether v is a finite number within [-limit, limit].
// NaN fails every comparison, so it is rejected explicitly.
func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}
