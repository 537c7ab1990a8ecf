package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	ProviderMTN    = "mtn_mobile_money"
	ProviderAirtel = "airtel_money"
)

const (
	RequestStatusActive    = "active"
	RequestStatusUsed      = "used"
	RequestStatusExpired   = "expired"
	RequestStatusCancelled = "cancelled"
)

// DefaultRequestTTLDays is how long an issued request stays scannable.
const DefaultRequestTTLDays = 7

// PaymentRequest is a scannable, time-boxed request for a specific amount
// tied to a unit and optionally a tenant. The payload is generated after the
// row exists so it can embed the row's own ID (two-phase creation).
type PaymentRequest struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UnitID        uint            `gorm:"not null;index" json:"unit_id" validate:"required"`
	TenantID      *uint           `gorm:"index" json:"tenant_id,omitempty"`
	PayerID       uint            `gorm:"not null;index" json:"payer_id" validate:"required"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	AccountNumber string          `gorm:"type:varchar(50);not null" json:"account_number" validate:"required,max=50"`
	Provider      string          `gorm:"type:varchar(32);not null" json:"provider" validate:"oneof=mtn_mobile_money airtel_money"`
	Payload       string          `gorm:"type:longtext" json:"payload"`
	Status        string          `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	ExpiresAt     time.Time       `gorm:"not null;index" json:"expires_at"`
	UsedAt        *time.Time      `gorm:"type:timestamp;default:null" json:"used_at,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *PaymentRequest) Validate() error {
	v := validator.New()
	if err := v.Struct(r); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	return nil
}

// IsScannable reports whether the request can still accept a payment.
func (r *PaymentRequest) IsScannable(now time.Time) bool {
	return r.Status == RequestStatusActive && r.ExpiresAt.After(now)
}

// IsKnownProvider reports whether p names a supported mobile money provider.
func IsKnownProvider(p string) bool {
	return p == ProviderMTN || p == ProviderAirtel
}
