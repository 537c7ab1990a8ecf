package repository

import (
	"time"

	"github.com/carryit/rentpay/app/models"
	"gorm.io/gorm"
)

type paymentRequestRepository struct {
	db *gorm.DB
}

// NewPaymentRequestRepository creates a payment request repository backed by GORM.
func NewPaymentRequestRepository(db *gorm.DB) PaymentRequestRepository {
	return &paymentRequestRepository{db: db}
}

func (r *paymentRequestRepository) Create(req *models.PaymentRequest) error {
	return r.db.Create(req).Error
}

func (r *paymentRequestRepository) GetByID(id uint) (*models.PaymentRequest, error) {
	var req models.PaymentRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *paymentRequestRepository) GetByUnitID(unitID uint, offset, limit int) ([]models.PaymentRequest, error) {
	var reqs []models.PaymentRequest
	err := r.db.Where("unit_id = ?", unitID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reqs).Error
	return reqs, err
}

func (r *paymentRequestRepository) GetByTenantID(tenantID uint, offset, limit int) ([]models.PaymentRequest, error) {
	var reqs []models.PaymentRequest
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reqs).Error
	return reqs, err
}

func (r *paymentRequestRepository) GetByPayerID(payerID uint, offset, limit int) ([]models.PaymentRequest, error) {
	var reqs []models.PaymentRequest
	err := r.db.Where("payer_id = ?", payerID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reqs).Error
	return reqs, err
}

func (r *paymentRequestRepository) SetPayload(id uint, payload string) error {
	return r.db.Model(&models.PaymentRequest{}).Where("id = ?", id).
		Update("payload", payload).Error
}

func (r *paymentRequestRepository) MarkUsed(id uint, usedAt time.Time) error {
	return r.db.Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", id, models.RequestStatusActive).
		Updates(map[string]interface{}{
			"status":  models.RequestStatusUsed,
			"used_at": &usedAt,
		}).Error
}

func (r *paymentRequestRepository) MarkCancelled(id uint) (bool, error) {
	tx := r.db.Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", id, models.RequestStatusActive).
		Update("status", models.RequestStatusCancelled)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *paymentRequestRepository) ExpireStale(now time.Time) (int64, error) {
	tx := r.db.Model(&models.PaymentRequest{}).
		Where("status = ? AND expires_at <= ?", models.RequestStatusActive, now).
		Update("status", models.RequestStatusExpired)
	return tx.RowsAffected, tx.Error
}
