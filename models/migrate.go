package models

import "gorm.io/gorm"

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&FishType{},
		&FishingZone{},
		&FishZoneLink{},
		&Vessel{},
	)
}
