package models

import (
	"errors"

	"gorm.io/gorm"
)

type VesselsRepository struct {
	db *gorm.DB
}

// ErrVesselNotFound is returned when a vessel id does not resolve.
var ErrVesselNotFound = errors.New("vessel not found")

func NewVesselsRepository(db *gorm.DB) *VesselsRepository {
	return &VesselsRepository{db: db}
}

func (r *VesselsRepository) GetAllVessels() ([]Vessel, error) {
	var vessels []Vessel
	if err := r.db.Order("id").Find(&vessels).Error; err != nil {
		return nil, err
	}
	return vessels, nil
}

func (r *VesselsRepository) GetByID(id uint) (*Vessel, error) {
	var vessel Vessel
	if err := r.db.First(&vessel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVesselNotFound
		}
		return nil, err
	}
	return &vessel, nil
}

func (r *VesselsRepository) CreateVessel(vessel *Vessel) error {
	return r.db.Create(vessel).Error
}

func (r *VesselsRepository) UpdateVessel(vessel *Vessel) error {
	res := r.db.Model(&Vessel{ID: vessel.ID}).
		Select("name", "description", "registration_number", "capacity", "vessel_type", "year_built", "image_path").
		Updates(vessel)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVesselNotFound
	}
	return nil
}

func (r *VesselsRepository) DeleteVessel(id uint) (*Vessel, error) {
	var vessel Vessel
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&vessel, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVesselNotFound
			}
			return err
		}
		return tx.Delete(&Vessel{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &vessel, nil
}
