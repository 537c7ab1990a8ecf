package models

import "time"

const (
	UnitStatusAvailable   = "available"
	UnitStatusOccupied    = "occupied"
	UnitStatusMaintenance = "maintenance"
	UnitStatusRenovation  = "renovation"
)

// Unit is a rentable unit inside a property. The engine only touches its
// status (occupied -> available when a tenant moves out).
type Unit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	UnitNumber string    `gorm:"type:varchar(50);not null" json:"unit_number"`
	Status     string    `gorm:"type:varchar(16);not null;default:'available';index" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
