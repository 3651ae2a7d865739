package models

import (
	"errors"

	"gorm.io/gorm"
)

type FishingZonesRepository struct {
	db *gorm.DB
}

// ErrFishingZoneNotFound is returned when a fishing zone id does not resolve.
var ErrFishingZoneNotFound = errors.New("fishing zone not found")

func NewFishingZonesRepository(db *gorm.DB) *FishingZonesRepository {
	return &FishingZonesRepository{db: db}
}

func (r *FishingZonesRepository) GetAllFishingZones() ([]FishingZone, error) {
	var zones []FishingZone
	if err := r.db.Order("id").Find(&zones).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, len(zones))
	for i := range zones {
		ids[i] = zones[i].ID
	}
	refs, err := zoneSide.refs(r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range zones {
		zones[i].FishTypes = refs[zones[i].ID]
	}
	return zones, nil
}

func (r *FishingZonesRepository) GetByID(id uint) (*FishingZone, error) {
	var zone FishingZone
	if err := r.db.First(&zone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFishingZoneNotFound
		}
		return nil, err
	}
	if err := r.fillFishTypes(r.db, &zone); err != nil {
		return nil, err
	}
	return &zone, nil
}

// CreateFishingZone inserts zone and links it to the fish types in
// fishTypeIDs that exist.
func (r *FishingZonesRepository) CreateFishingZone(zone *FishingZone, fishTypeIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(zone).Error; err != nil {
			return err
		}
		if _, err := zoneSide.sync(tx, zone.ID, fishTypeIDs); err != nil {
			return err
		}
		return r.fillFishTypes(tx, zone)
	})
}

// UpdateFishingZone overwrites the scalar fields and reconciles the fish
// type links in one transaction.
func (r *FishingZonesRepository) UpdateFishingZone(zone *FishingZone, fishTypeIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&FishingZone{}, zone.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFishingZoneNotFound
			}
			return err
		}
		if err := tx.Model(&FishingZone{ID: zone.ID}).
			Select("name", "description", "image_path", "latitude", "longitude").
			Updates(zone).Error; err != nil {
			return err
		}
		if _, err := zoneSide.sync(tx, zone.ID, fishTypeIDs); err != nil {
			return err
		}
		return r.fillFishTypes(tx, zone)
	})
}

func (r *FishingZonesRepository) DeleteFishingZone(id uint) (*FishingZone, error) {
	var zone FishingZone
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&zone, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFishingZoneNotFound
			}
			return err
		}
		if err := zoneSide.clear(tx, id); err != nil {
			return err
		}
		return tx.Delete(&FishingZone{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

// FishTypeOptions lists all fish types a zone can be linked to.
func (r *FishingZonesRepository) FishTypeOptions() ([]Ref, error) {
	return zoneSide.options(r.db)
}

func (r *FishingZonesRepository) fillFishTypes(tx *gorm.DB, zone *FishingZone) error {
	refs, err := zoneSide.refs(tx, []uint{zone.ID})
	if err != nil {
		return err
	}
	zone.FishTypes = refs[zone.ID]
	return nil
}
