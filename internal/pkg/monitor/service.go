package monitor

import (
	"fmt"
	"time"

	"github.com/carryit/rentpay/app/models"
	"github.com/carryit/rentpay/app/repository"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// PassResult summarizes one monitoring pass.
type PassResult struct {
	Checked     int       `json:"checked"`
	Updated     int       `json:"updated"`
	MovedOut    int       `json:"moved_out"`
	GeneratedAt time.Time `json:"generated_at"`
}

// TenantCategory is one tenant's computed standing for the dashboard.
type TenantCategory struct {
	TenantID       uint            `json:"tenant_id"`
	TenantName     string          `json:"tenant_name"`
	Phone          string          `json:"phone"`
	UnitID         uint            `json:"unit_id"`
	MonthlyRent    decimal.Decimal `json:"monthly_rent"`
	Category       string          `json:"category"`
	DaysOverdue    int             `json:"days_overdue"`
	NextPaymentDue *time.Time      `json:"next_payment_due,omitempty"`
}

// CategorySummary aggregates one category for the dashboard.
type CategorySummary struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Service runs the monitoring pass and serves the category dashboards.
type Service struct {
	repos *repository.Repositories
	now   func() time.Time
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos, now: time.Now}
}

// RunPass recomputes every active tenant's category and persists the ones
// that changed. A tenant found moved out is deactivated and their unit goes
// back to available.
func (s *Service) RunPass() (*PassResult, error) {
	tenants, err := s.repos.Tenant.GetActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}

	today := s.now()
	result := &PassResult{GeneratedAt: today}

	for i := range tenants {
		tenant := &tenants[i]
		result.Checked++

		category := Categorize(tenant, today)
		if category == models.CategoryMovedOut {
			if err := s.retire(tenant, today); err != nil {
				log.Errorf("[Monitor] could not retire tenant %d: %v", tenant.ID, err)
				continue
			}
			result.MovedOut++
			result.Updated++
			continue
		}

		if category == tenant.RentPaymentStatus {
			continue
		}
		if err := s.repos.Tenant.SetCategory(tenant.ID, category); err != nil {
			log.Errorf("[Monitor] could not update category for tenant %d: %v", tenant.ID, err)
			continue
		}
		result.Updated++
	}

	log.Infof("[Monitor] pass complete checked=%d updated=%d moved_out=%d", result.Checked, result.Updated, result.MovedOut)
	return result, nil
}

// retire deactivates a moved-out tenant and frees their unit.
func (s *Service) retire(tenant *models.Tenant, today time.Time) error {
	moveOut := today
	if tenant.MoveOutDate != nil {
		moveOut = *tenant.MoveOutDate
	}
	if err := s.repos.Tenant.SetCategory(tenant.ID, models.CategoryMovedOut); err != nil {
		return err
	}
	if err := s.repos.Tenant.Deactivate(tenant.ID, moveOut); err != nil {
		return err
	}
	if err := s.repos.Unit.SetStatus(tenant.UnitID, models.UnitStatusAvailable); err != nil {
		return err
	}
	return nil
}

// TenantCategories returns every active tenant with their computed category,
// optionally restricted to one property.
func (s *Service) TenantCategories(propertyID *uint) ([]TenantCategory, error) {
	tenants, err := s.loadTenants(propertyID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	out := make([]TenantCategory, 0, len(tenants))
	for i := range tenants {
		tenant := &tenants[i]
		out = append(out, TenantCategory{
			TenantID:       tenant.ID,
			TenantName:     tenant.FullName(),
			Phone:          tenant.Phone,
			UnitID:         tenant.UnitID,
			MonthlyRent:    tenant.MonthlyRent,
			Category:       Categorize(tenant, today),
			DaysOverdue:    DaysOverdue(tenant, today),
			NextPaymentDue: tenant.NextPaymentDue,
		})
	}
	return out, nil
}

// PaymentSummary returns per-category counts and rent totals.
func (s *Service) PaymentSummary(propertyID *uint) (map[string]CategorySummary, error) {
	tenants, err := s.loadTenants(propertyID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	summary := map[string]CategorySummary{
		models.CategoryOverdue: {TotalAmount: decimal.Zero},
		models.CategoryDue:     {TotalAmount: decimal.Zero},
		models.CategoryPending: {TotalAmount: decimal.Zero},
		models.CategoryPaid:    {TotalAmount: decimal.Zero},
	}
	for i := range tenants {
		tenant := &tenants[i]
		category := Categorize(tenant, today)
		if category == models.CategoryMovedOut {
			continue
		}
		entry := summary[category]
		entry.Count++
		entry.TotalAmount = entry.TotalAmount.Add(tenant.MonthlyRent)
		summary[category] = entry
	}
	return summary, nil
}

func (s *Service) loadTenants(propertyID *uint) ([]models.Tenant, error) {
	if propertyID != nil {
		return s.repos.Tenant.GetActiveByProperty(*propertyID)
	}
	return s.repos.Tenant.GetActive()
}
