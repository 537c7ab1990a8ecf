package repository

import (
	"time"

	"github.com/carryit/rentpay/app/models"
	"gorm.io/gorm"
)

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a tenant repository backed by GORM.
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.First(&tenant, id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) GetActive() ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.db.Where("is_active = ?", true).Find(&tenants).Error
	return tenants, err
}

func (r *tenantRepository) GetActiveByProperty(propertyID uint) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.db.Where("is_active = ? AND property_id = ?", true, propertyID).Find(&tenants).Error
	return tenants, err
}

func (r *tenantRepository) RecordPayment(id uint, lastPayment, nextDue time.Time) error {
	return r.db.Model(&models.Tenant{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_payment_date":   &lastPayment,
			"next_payment_due":    &nextDue,
			"rent_payment_status": models.CategoryPaid,
		}).Error
}

func (r *tenantRepository) SetCategory(id uint, category string) error {
	return r.db.Model(&models.Tenant{}).Where("id = ?", id).
		Update("rent_payment_status", category).Error
}

func (r *tenantRepository) Deactivate(id uint, moveOutDate time.Time) error {
	return r.db.Model(&models.Tenant{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":           false,
			"move_out_date":       &moveOutDate,
			"rent_payment_status": models.CategoryMovedOut,
		}).Error
}
