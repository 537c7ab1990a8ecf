package models

import "time"

// Property carries the per-property merchant configuration the engine needs
// to route a payment: one receiving number per supported provider.
type Property struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Name                 string    `gorm:"type:varchar(150);not null" json:"name"`
	OwnerID              uint      `gorm:"not null;index" json:"owner_id"`
	MTNMobileMoneyNumber string    `gorm:"type:varchar(20)" json:"mtn_mobile_money_number"`
	AirtelMoneyNumber    string    `gorm:"type:varchar(20)" json:"airtel_money_number"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PayeeNumberFor returns the property's receiving number for a provider, or
// empty when the provider is not configured.
func (p *Property) PayeeNumberFor(provider string) string {
	switch provider {
	case ProviderMTN:
		return p.MTNMobileMoneyNumber
	case ProviderAirtel:
		return p.AirtelMoneyNumber
	default:
		return ""
	}
}
