package repository

import (
	"time"

	"github.com/carryit/rentpay/app/models"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a mobile transaction repository backed by GORM.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(tx *models.MobileTransaction) error {
	return r.db.Create(tx).Error
}

func (r *transactionRepository) GetByID(id uint) (*models.MobileTransaction, error) {
	var tx models.MobileTransaction
	if err := r.db.First(&tx, id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) GetByExternalID(externalID string) (*models.MobileTransaction, error) {
	var tx models.MobileTransaction
	if err := r.db.Where("external_id = ?", externalID).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) GetByProviderTxID(providerTxID string) (*models.MobileTransaction, error) {
	var tx models.MobileTransaction
	if err := r.db.Where("provider_tx_id = ?", providerTxID).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) RecordProviderAck(id uint, providerTxID, providerStatus, rawResponse string) error {
	return r.db.Model(&models.MobileTransaction{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"provider_tx_id":    providerTxID,
			"provider_status":   providerStatus,
			"provider_response": rawResponse,
		}).Error
}

// MarkPaid transitions pending -> paid. The status predicate in the WHERE
// clause is the single-writer guard: of two concurrent confirmations for the
// same row, exactly one sees RowsAffected > 0.
func (r *transactionRepository) MarkPaid(id uint, completedAt time.Time, providerStatus, rawPayload string) (bool, error) {
	tx := r.db.Model(&models.MobileTransaction{}).
		Where("id = ? AND status = ?", id, models.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":           models.TransactionStatusPaid,
			"completed_at":     &completedAt,
			"provider_status":  providerStatus,
			"callback_payload": rawPayload,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// MarkFailed transitions pending -> failed under the same guard as MarkPaid.
func (r *transactionRepository) MarkFailed(id uint, failedAt time.Time, reason, rawPayload string) (bool, error) {
	tx := r.db.Model(&models.MobileTransaction{}).
		Where("id = ? AND status = ?", id, models.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":           models.TransactionStatusFailed,
			"failed_at":        &failedAt,
			"failure_reason":   reason,
			"callback_payload": rawPayload,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *transactionRepository) StoreCallbackPayload(id uint, rawPayload string) error {
	return r.db.Model(&models.MobileTransaction{}).Where("id = ?", id).
		Update("callback_payload", rawPayload).Error
}

func (r *transactionRepository) GetPaidInWindow(start, end time.Time) ([]models.MobileTransaction, error) {
	var txs []models.MobileTransaction
	err := r.db.Where("status = ? AND completed_at >= ? AND completed_at < ?",
		models.TransactionStatusPaid, start, end).Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) GetPaidUnlinked() ([]models.MobileTransaction, error) {
	var txs []models.MobileTransaction
	err := r.db.Where("status = ? AND tenant_id IS NULL", models.TransactionStatusPaid).
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) LinkTenant(id uint, tenantID uint) error {
	return r.db.Model(&models.MobileTransaction{}).Where("id = ?", id).
		Update("tenant_id", tenantID).Error
}
