package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryOverdue  = "overdue"
	CategoryDue      = "due"
	CategoryPending  = "pending"
	CategoryPaid     = "paid"
	CategoryMovedOut = "moved_out"
)

// Tenant holds the rental record fields the payment engine reads and writes.
// The wider tenant CRUD (documents, employment, family details) lives in the
// management backend; this engine only owns the payment-related columns.
type Tenant struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	FirstName         string          `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName          string          `gorm:"type:varchar(100);not null" json:"last_name"`
	Email             string          `gorm:"type:varchar(200);index" json:"email"`
	Phone             string          `gorm:"type:varchar(20);not null;index" json:"phone"`
	PropertyID        uint            `gorm:"not null;index" json:"property_id"`
	UnitID            uint            `gorm:"not null;index" json:"unit_id"`
	MonthlyRent       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"monthly_rent"`
	MoveInDate        time.Time       `gorm:"type:date;not null" json:"move_in_date"`
	MoveOutDate       *time.Time      `gorm:"type:date;default:null" json:"move_out_date,omitempty"`
	IsActive          bool            `gorm:"default:true;index" json:"is_active"`
	RentPaymentStatus string          `gorm:"type:varchar(16);not null;default:'pending';index" json:"rent_payment_status"`
	LastPaymentDate   *time.Time      `gorm:"type:date;default:null" json:"last_payment_date,omitempty"`
	NextPaymentDue    *time.Time      `gorm:"type:date;default:null" json:"next_payment_due,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// FullName returns the tenant's display name.
func (t *Tenant) FullName() string {
	return t.FirstName + " " + t.LastName
}
