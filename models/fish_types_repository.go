package models

import (
	"errors"

	"gorm.io/gorm"
)

type FishTypesRepository struct {
	db *gorm.DB
}

// ErrFishTypeNotFound is returned when a fish type id does not resolve.
var ErrFishTypeNotFound = errors.New("fish type not found")

type FishTypeFilters struct {
	ZoneID        *uint
	PriceLessThan *float64
}

func NewFishTypesRepository(db *gorm.DB) *FishTypesRepository {
	return &FishTypesRepository{
		db: db,
	}
}

func (r *FishTypesRepository) GetFilteredFishTypes(offset, limit int, filters FishTypeFilters) ([]FishType, int64, error) {
	var fish []FishType
	var total int64

	query := r.db.Model(&FishType{})

	// Filter
	if filters.ZoneID != nil {
		linked := r.db.Model(&FishZoneLink{}).
			Select("fish_type_id").
			Where("fishing_zone_id = ?", *filters.ZoneID)
		query = query.Where("id IN (?)", linked)
	}
	if filters.PriceLessThan != nil {
		query = query.Where("price_per_kg < ?", *filters.PriceLessThan)
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&fish).Error; err != nil {
		return nil, 0, err
	}

	if err := r.loadZones(r.db, fish); err != nil {
		return nil, 0, err
	}
	return fish, total, nil
}

func (r *FishTypesRepository) GetByID(id uint) (*FishType, error) {
	var fish FishType
	if err := r.db.First(&fish, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFishTypeNotFound
		}
		return nil, err
	}

	list := []FishType{fish}
	if err := r.loadZones(r.db, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// CreateFishType inserts fish and links it to the zones in zoneIDs that exist.
// On success fish.ID and fish.Zones are set.
func (r *FishTypesRepository) CreateFishType(fish *FishType, zoneIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(fish).Error; err != nil {
			return err
		}
		if _, err := fishSide.sync(tx, fish.ID, zoneIDs); err != nil {
			return err
		}
		return r.fillZones(tx, fish)
	})
}

// UpdateFishType overwrites every scalar field of the stored row and
// reconciles its zone links with zoneIDs in the same transaction.
func (r *FishTypesRepository) UpdateFishType(fish *FishType, zoneIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&FishType{}, fish.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFishTypeNotFound
			}
			return err
		}
		if err := tx.Model(&FishType{ID: fish.ID}).
			Select("name", "description", "price_per_kg", "family", "habitat_type", "image_path").
			Updates(fish).Error; err != nil {
			return err
		}
		if _, err := fishSide.sync(tx, fish.ID, zoneIDs); err != nil {
			return err
		}
		return r.fillZones(tx, fish)
	})
}

// DeleteFishType removes the row and its zone links and returns the row as
// it was, so the caller can clean up its image.
func (r *FishTypesRepository) DeleteFishType(id uint) (*FishType, error) {
	var fish FishType
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&fish, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFishTypeNotFound
			}
			return err
		}
		if err := fishSide.clear(tx, id); err != nil {
			return err
		}
		return tx.Delete(&FishType{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &fish, nil
}

// ZoneOptions lists all fishing zones a fish type can be linked to.
func (r *FishTypesRepository) ZoneOptions() ([]Ref, error) {
	return fishSide.options(r.db)
}

func (r *FishTypesRepository) fillZones(tx *gorm.DB, fish *FishType) error {
	refs, err := fishSide.refs(tx, []uint{fish.ID})
	if err != nil {
		return err
	}
	fish.Zones = refs[fish.ID]
	return nil
}

func (r *FishTypesRepository) loadZones(tx *gorm.DB, fish []FishType) error {
	ids := make([]uint, len(fish))
	for i := range fish {
		ids[i] = fish[i].ID
	}
	refs, err := fishSide.refs(tx, ids)
	if err != nil {
		return err
	}
	for i := range fish {
		fish[i].Zones = refs[fish[i].ID]
	}
	return nil
}
