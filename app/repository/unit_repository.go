package repository

import (
	"github.com/carryit/rentpay/app/models"
	"gorm.io/gorm"
)

type unitRepository struct {
	db *gorm.DB
}

// NewUnitRepository creates a unit repository backed by GORM.
func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) GetByID(id uint) (*models.Unit, error) {
	var unit models.Unit
	if err := r.db.First(&unit, id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *unitRepository) SetStatus(id uint, status string) error {
	return r.db.Model(&models.Unit{}).Where("id = ?", id).
		Update("status", status).Error
}
