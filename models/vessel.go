package models

import "time"

// earliestYearBuilt bounds YearBuilt from below; zero means unknown.
const earliestYearBuilt = 1800

// Vessel represents a fishing vessel. Vessels have no relations.
type Vessel struct {
	ID                 uint   `gorm:"primaryKey"`
	Name               string `gorm:"not null"`
	Description        string
	RegistrationNumber string `gorm:"index"`
	Capacity           int    `gorm:"not null;default:0"`
	VesselType         string
	YearBuilt          int
	ImagePath          string
}

func (v *Vessel) TableName() string {
	return "vessels"
}

func (v *Vessel) Validate() FieldErrors {
	errs := FieldErrors{}
	if v.Name == "" {
		errs.Add("name", "Name is required")
	}
	if v.Capacity < 0 {
		errs.Add("capacity", "Capacity cannot be negative")
	}
	if v.YearBuilt != 0 && (v.YearBuilt < earliestYearBuilt || v.YearBuilt > time.Now().Year()+1) {
		errs.Add("year_built", "Year built is out of range")
	}
	return errs
}
