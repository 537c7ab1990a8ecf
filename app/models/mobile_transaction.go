package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionStatusPending = "pending"
	TransactionStatusPaid    = "paid"
	TransactionStatusFailed  = "failed"
)

// DefaultCurrency is the currency assumed for all mobile money movements.
const DefaultCurrency = "UGX"

// MobileTransaction is one attempt to collect money through an external
// mobile money provider. ExternalID is assigned once, before any provider
// call, and is the sole idempotency anchor for matching callbacks.
type MobileTransaction struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	PaymentRequestID *uint           `gorm:"index" json:"payment_request_id,omitempty"`
	UnitID           uint            `gorm:"not null;index" json:"unit_id"`
	TenantID         *uint           `gorm:"index" json:"tenant_id,omitempty"`
	PayerID          uint            `gorm:"not null;index" json:"payer_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency         string          `gorm:"type:varchar(8);not null;default:'UGX'" json:"currency"`
	Provider         string          `gorm:"type:varchar(32);not null;index" json:"provider"`
	ExternalID       string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"external_id"`
	ProviderTxID     string          `gorm:"type:varchar(191);index" json:"provider_tx_id,omitempty"`
	PayerPhone       string          `gorm:"type:varchar(20);not null;index" json:"payer_phone"`
	PayeePhone       string          `gorm:"type:varchar(20);not null" json:"payee_phone"`
	Status           string          `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ProviderStatus   string          `gorm:"type:varchar(50)" json:"provider_status"`
	FailureReason    string          `gorm:"type:text" json:"failure_reason,omitempty"`
	InitiatedAt      time.Time       `gorm:"autoCreateTime" json:"initiated_at"`
	CompletedAt      *time.Time      `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	FailedAt         *time.Time      `gorm:"type:timestamp;default:null" json:"failed_at,omitempty"`
	ProviderResponse string          `gorm:"type:longtext" json:"provider_response,omitempty"`
	CallbackPayload  string          `gorm:"type:longtext" json:"callback_payload,omitempty"`
	Reference        string          `gorm:"type:varchar(100)" json:"reference"`
	Description      string          `gorm:"type:text" json:"description"`
	MonthsAdvance    int             `gorm:"not null;default:1" json:"months_advance"`
	IsPrepayment     bool            `gorm:"default:false" json:"is_prepayment"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the transaction already reached a final state.
func (t *MobileTransaction) IsTerminal() bool {
	return t.Status == TransactionStatusPaid || t.Status == TransactionStatusFailed
}
