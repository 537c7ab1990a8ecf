package models

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Setting represents a single persisted configuration entry.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppSettings is the in-memory view of operator-tunable configuration. The
// matching tolerances are deliberately configuration, not inferred from
// payment history: the 1-unit discrepancy allowance and the 10% auto-match
// variance come from the business side and may change.
type AppSettings struct {
	MerchantName           string  `json:"merchant_name"`
	MTNFallbackNumber      string  `json:"mtn_fallback_number"`
	AirtelFallbackNumber   string  `json:"airtel_fallback_number"`
	DiscrepancyTolerance   float64 `json:"discrepancy_tolerance"`    // currency units
	AutoMatchRentTolerance float64 `json:"auto_match_rent_tolerance"` // fraction of monthly rent
	MonitorIntervalHours   int     `json:"monitor_interval_hours"`
	ReconcileIntervalDays  int     `json:"reconcile_interval_days"`
	ExpirySweepMinutes     int     `json:"expiry_sweep_minutes"`
}

var (
	appSettings *AppSettings
	settingsMu  sync.RWMutex
)

func defaultAppSettings() *AppSettings {
	return &AppSettings{
		MerchantName:           "CarryIT Property Manager",
		DiscrepancyTolerance:   1,
		AutoMatchRentTolerance: 0.10,
		MonitorIntervalHours:   24,
		ReconcileIntervalDays:  7,
		ExpirySweepMinutes:     60,
	}
}

// GetAppSettings returns the current application settings, falling back to
// defaults when LoadSettings has not run (tests, early bootstrap).
func GetAppSettings() *AppSettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if appSettings == nil {
		return defaultAppSettings()
	}
	return appSettings
}

// SettingKeyMerchantName and friends are the persisted keys ApplySettings
// understands; anything else in the settings table is ignored.
const (
	SettingKeyMerchantName         = "payment_merchant_name"
	SettingKeyMTNNumber            = "mtn_mobile_money_number"
	SettingKeyAirtelNumber         = "airtel_money_number"
	SettingKeyDiscrepancyTolerance = "discrepancy_tolerance"
	SettingKeyAutoMatchTolerance   = "auto_match_rent_tolerance"
	SettingKeyMonitorInterval      = "monitor_interval_hours"
	SettingKeyReconcileInterval    = "reconcile_interval_days"
	SettingKeyExpirySweep          = "expiry_sweep_minutes"
)

// SettingKeys lists every operator-tunable key in a stable order.
var SettingKeys = []string{
	SettingKeyMerchantName,
	SettingKeyMTNNumber,
	SettingKeyAirtelNumber,
	SettingKeyDiscrepancyTolerance,
	SettingKeyAutoMatchTolerance,
	SettingKeyMonitorInterval,
	SettingKeyReconcileInterval,
	SettingKeyExpirySweep,
}

// IsKnownSettingKey reports whether key is one of SettingKeys.
func IsKnownSettingKey(key string) bool {
	for _, k := range SettingKeys {
		if k == key {
			return true
		}
	}
	return false
}

// LoadSettings loads settings from the database into memory.
func LoadSettings(db *gorm.DB) error {
	var settings []Setting
	if err := db.Find(&settings).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	ApplySettings(settings)
	return nil
}

// ApplySettings rebuilds the in-memory view from persisted rows on top of
// the defaults. Values that fail to parse keep the default.
func ApplySettings(settings []Setting) {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	appSettings = defaultAppSettings()
	for _, setting := range settings {
		switch setting.Key {
		case SettingKeyMerchantName:
			appSettings.MerchantName = setting.Value
		case SettingKeyMTNNumber:
			appSettings.MTNFallbackNumber = setting.Value
		case SettingKeyAirtelNumber:
			appSettings.AirtelFallbackNumber = setting.Value
		case SettingKeyDiscrepancyTolerance:
			if v, err := strconv.ParseFloat(setting.Value, 64); err == nil && v >= 0 {
				appSettings.DiscrepancyTolerance = v
			}
		case SettingKeyAutoMatchTolerance:
			if v, err := strconv.ParseFloat(setting.Value, 64); err == nil && v > 0 && v < 1 {
				appSettings.AutoMatchRentTolerance = v
			}
		case SettingKeyMonitorInterval:
			if v, err := strconv.Atoi(setting.Value); err == nil && v > 0 {
				appSettings.MonitorIntervalHours = v
			}
		case SettingKeyReconcileInterval:
			if v, err := strconv.Atoi(setting.Value); err == nil && v > 0 {
				appSettings.ReconcileIntervalDays = v
			}
		case SettingKeyExpirySweep:
			if v, err := strconv.Atoi(setting.Value); err == nil && v > 0 {
				appSettings.ExpirySweepMinutes = v
			}
		}
	}
}

// FallbackPayeeNumber returns the globally configured receiving number for a
// provider, used when the property has none of its own.
func (s *AppSettings) FallbackPayeeNumber(provider string) string {
	switch provider {
	case ProviderMTN:
		return s.MTNFallbackNumber
	case ProviderAirtel:
		return s.AirtelFallbackNumber
	default:
		return ""
	}
}
