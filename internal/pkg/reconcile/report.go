package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchedPayment pairs a tenant's expected rent with the mobile transaction
// that covered it in the reporting month.
type MatchedPayment struct {
	TenantID       uint            `json:"tenant_id"`
	TenantName     string          `json:"tenant_name"`
	TransactionID  uint            `json:"transaction_id"`
	ExternalID     string          `json:"external_id"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	MonthsAdvance  int             `json:"months_advance"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// UnmatchedTransaction is money that arrived without a tenant to book it to.
type UnmatchedTransaction struct {
	TransactionID uint            `json:"transaction_id"`
	ExternalID    string          `json:"external_id"`
	Amount        decimal.Decimal `json:"amount"`
	PayerPhone    string          `json:"payer_phone"`
	Provider      string          `json:"provider"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// MissingPayment is a tenant the month expected money from and got none.
type MissingPayment struct {
	TenantID       uint            `json:"tenant_id"`
	TenantName     string          `json:"tenant_name"`
	Phone          string          `json:"phone"`
	UnitID         uint            `json:"unit_id"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
}

// Discrepancy is a matched payment whose amount is off by more than the
// configured tolerance.
type Discrepancy struct {
	TenantID       uint            `json:"tenant_id"`
	TenantName     string          `json:"tenant_name"`
	TransactionID  uint            `json:"transaction_id"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Difference     decimal.Decimal `json:"difference"`
}

// Report is the outcome of reconciling one calendar month.
type Report struct {
	Month             int                    `json:"month"`
	Year              int                    `json:"year"`
	PropertyID        *uint                  `json:"property_id,omitempty"`
	WindowStart       time.Time              `json:"window_start"`
	WindowEnd         time.Time              `json:"window_end"`
	Matched           []MatchedPayment       `json:"matched"`
	UnmatchedMobile   []UnmatchedTransaction `json:"unmatched_mobile"`
	UnmatchedExpected []MissingPayment       `json:"unmatched_expected"`
	Discrepancies     []Discrepancy          `json:"amount_discrepancies"`
	TotalExpected     decimal.Decimal        `json:"total_expected"`
	TotalCollected    decimal.Decimal        `json:"total_collected"`
	GeneratedAt       time.Time              `json:"generated_at"`
}

// AutoMatchCandidate describes one tenant considered for an orphan payment.
type AutoMatchCandidate struct {
	TenantID   uint   `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
}

// AutoMatchEntry records the decision taken for one orphan transaction.
type AutoMatchEntry struct {
	TransactionID uint                 `json:"transaction_id"`
	ExternalID    string               `json:"external_id"`
	Amount        decimal.Decimal      `json:"amount"`
	PayerPhone    string               `json:"payer_phone"`
	Linked        *AutoMatchCandidate  `json:"linked,omitempty"`
	Candidates    []AutoMatchCandidate `json:"candidates,omitempty"`
}

// AutoMatchReport summarizes one auto-match run. Ambiguous entries are never
// linked automatically; they carry the full candidate list for a human call.
type AutoMatchReport struct {
	Linked      []AutoMatchEntry `json:"linked"`
	Ambiguous   []AutoMatchEntry `json:"ambiguous"`
	Unmatchable []AutoMatchEntry `json:"unmatchable"`
	GeneratedAt time.Time        `json:"generated_at"`
}
