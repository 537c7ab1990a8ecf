package repository

import (
	"time"

	"github.com/carryit/rentpay/app/models"
	"gorm.io/gorm"
)

// PaymentRequestRepository defines database operations for QR payment requests.
type PaymentRequestRepository interface {
	Create(req *models.PaymentRequest) error
	GetByID(id uint) (*models.PaymentRequest, error)
	GetByUnitID(unitID uint, offset, limit int) ([]models.PaymentRequest, error)
	GetByTenantID(tenantID uint, offset, limit int) ([]models.PaymentRequest, error)
	GetByPayerID(payerID uint, offset, limit int) ([]models.PaymentRequest, error)
	SetPayload(id uint, payload string) error
	MarkUsed(id uint, usedAt time.Time) error
	MarkCancelled(id uint) (bool, error)
	ExpireStale(now time.Time) (int64, error)
}

// TransactionRepository defines database operations for mobile transactions.
// MarkPaid and MarkFailed are conditional single-writer updates: they only
// apply while the row is still pending and report whether they did.
type TransactionRepository interface {
	Create(tx *models.MobileTransaction) error
	GetByID(id uint) (*models.MobileTransaction, error)
	GetByExternalID(externalID string) (*models.MobileTransaction, error)
	GetByProviderTxID(providerTxID string) (*models.MobileTransaction, error)
	RecordProviderAck(id uint, providerTxID, providerStatus, rawResponse string) error
	MarkPaid(id uint, completedAt time.Time, providerStatus, rawPayload string) (bool, error)
	MarkFailed(id uint, failedAt time.Time, reason, rawPayload string) (bool, error)
	StoreCallbackPayload(id uint, rawPayload string) error
	GetPaidInWindow(start, end time.Time) ([]models.MobileTransaction, error)
	GetPaidUnlinked() ([]models.MobileTransaction, error)
	LinkTenant(id uint, tenantID uint) error
}

// TenantRepository defines the tenant-side reads and writes the engine needs.
type TenantRepository interface {
	GetByID(id uint) (*models.Tenant, error)
	GetActive() ([]models.Tenant, error)
	GetActiveByProperty(propertyID uint) ([]models.Tenant, error)
	RecordPayment(id uint, lastPayment, nextDue time.Time) error
	SetCategory(id uint, category string) error
	Deactivate(id uint, moveOutDate time.Time) error
}

// UnitRepository defines unit lookups and the move-out status cascade.
type UnitRepository interface {
	GetByID(id uint) (*models.Unit, error)
	SetStatus(id uint, status string) error
}

// PropertyRepository resolves per-property merchant configuration.
type PropertyRepository interface {
	GetByID(id uint) (*models.Property, error)
}

// SettingRepository defines persisted configuration access.
type SettingRepository interface {
	GetAll() ([]models.Setting, error)
	GetValue(key string) (string, error)
	SetValue(key, value string) error
}

// Repositories holds all repository instances.
type Repositories struct {
	PaymentRequest PaymentRequestRepository
	Transaction    TransactionRepository
	Tenant         TenantRepository
	Unit           UnitRepository
	Property       PropertyRepository
	Setting        SettingRepository
}

// NewRepositories creates a new instance of all repositories.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		PaymentRequest: NewPaymentRequestRepository(db),
		Transaction:    NewTransactionRepository(db),
		Tenant:         NewTenantRepository(db),
		Unit:           NewUnitRepository(db),
		Property:       NewPropertyRepository(db),
		Setting:        NewSettingRepository(db),
	}
}
