// Package reconcile compares the money that actually arrived in a calendar
// month against the rent the tenant roster says should have arrived.
package reconcile

import (
	"fmt"
	"time"

	"github.com/carryit/rentpay/app/models"
	"github.com/carryit/rentpay/app/repository"
	"github.com/carryit/rentpay/internal/pkg/payment"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// Service builds reconciliation and auto-match reports.
type Service struct {
	repos *repository.Repositories
	now   func() time.Time
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos, now: time.Now}
}

// MonthWindow returns the half-open UTC interval [start, end) covering one
// calendar month.
func MonthWindow(month, year int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("month out of range: %d", month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// Reconcile builds the report for one month, optionally restricted to a
// single property. It only reads; nothing in the database changes.
func (s *Service) Reconcile(month, year int, propertyID *uint) (*Report, error) {
	start, end, err := MonthWindow(month, year)
	if err != nil {
		return nil, err
	}

	var tenants []models.Tenant
	if propertyID != nil {
		tenants, err = s.repos.Tenant.GetActiveByProperty(*propertyID)
	} else {
		tenants, err = s.repos.Tenant.GetActive()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}

	txs, err := s.repos.Transaction.GetPaidInWindow(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load paid transactions: %w", err)
	}

	tolerance := decimal.NewFromFloat(models.GetAppSettings().DiscrepancyTolerance)

	tenantByID := make(map[uint]*models.Tenant, len(tenants))
	for i := range tenants {
		tenantByID[tenants[i].ID] = &tenants[i]
	}

	report := &Report{
		Month:          month,
		Year:           year,
		PropertyID:     propertyID,
		WindowStart:    start,
		WindowEnd:      end,
		TotalExpected:  decimal.Zero,
		TotalCollected: decimal.Zero,
		GeneratedAt:    s.now(),
	}

	paidTenants := make(map[uint]bool)
	for _, tx := range txs {
		report.TotalCollected = report.TotalCollected.Add(tx.Amount)

		var tenant *models.Tenant
		if tx.TenantID != nil {
			tenant = tenantByID[*tx.TenantID]
		}
		if tenant == nil {
			// Either never linked to a tenant, or linked to one outside the
			// requested property scope.
			report.UnmatchedMobile = append(report.UnmatchedMobile, UnmatchedTransaction{
				TransactionID: tx.ID,
				ExternalID:    tx.ExternalID,
				Amount:        tx.Amount,
				PayerPhone:    tx.PayerPhone,
				Provider:      tx.Provider,
				CompletedAt:   *tx.CompletedAt,
			})
			continue
		}

		paidTenants[tenant.ID] = true
		months := tx.MonthsAdvance
		if months < 1 {
			months = 1
		}
		expected := tenant.MonthlyRent.Mul(decimal.NewFromInt(int64(months)))

		report.Matched = append(report.Matched, MatchedPayment{
			TenantID:       tenant.ID,
			TenantName:     tenant.FullName(),
			TransactionID:  tx.ID,
			ExternalID:     tx.ExternalID,
			ExpectedAmount: expected,
			PaidAmount:     tx.Amount,
			MonthsAdvance:  months,
			CompletedAt:    *tx.CompletedAt,
		})

		if diff := tx.Amount.Sub(expected); diff.Abs().GreaterThan(tolerance) {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				TenantID:       tenant.ID,
				TenantName:     tenant.FullName(),
				TransactionID:  tx.ID,
				ExpectedAmount: expected,
				PaidAmount:     tx.Amount,
				Difference:     diff,
			})
		}
	}

	for i := range tenants {
		tenant := &tenants[i]
		report.TotalExpected = report.TotalExpected.Add(tenant.MonthlyRent)
		if paidTenants[tenant.ID] {
			continue
		}
		report.UnmatchedExpected = append(report.UnmatchedExpected, MissingPayment{
			TenantID:       tenant.ID,
			TenantName:     tenant.FullName(),
			Phone:          tenant.Phone,
			UnitID:         tenant.UnitID,
			ExpectedAmount: tenant.MonthlyRent,
		})
	}

	log.Infof("[Reconcile] %04d-%02d matched=%d unmatched_mobile=%d unmatched_expected=%d discrepancies=%d",
		year, month, len(report.Matched), len(report.UnmatchedMobile), len(report.UnmatchedExpected), len(report.Discrepancies))
	return report, nil
}

// AutoMatch tries to attribute paid transactions that carry no tenant link,
// optionally considering only one property's tenants. A link is written
// only when exactly one active tenant has the payer's phone number and a
// monthly rent within the configured tolerance of the paid amount; the
// linked tenant then gets the same schedule effects as a confirmed payment.
// Anything ambiguous is reported and left alone.
func (s *Service) AutoMatch(propertyID *uint) (*AutoMatchReport, error) {
	orphans, err := s.repos.Transaction.GetPaidUnlinked()
	if err != nil {
		return nil, fmt.Errorf("failed to load unlinked transactions: %w", err)
	}
	var tenants []models.Tenant
	if propertyID != nil {
		tenants, err = s.repos.Tenant.GetActiveByProperty(*propertyID)
	} else {
		tenants, err = s.repos.Tenant.GetActive()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}

	tolerance := decimal.NewFromFloat(models.GetAppSettings().AutoMatchRentTolerance)
	report := &AutoMatchReport{GeneratedAt: s.now()}

	for _, tx := range orphans {
		entry := AutoMatchEntry{
			TransactionID: tx.ID,
			ExternalID:    tx.ExternalID,
			Amount:        tx.Amount,
			PayerPhone:    tx.PayerPhone,
		}

		var candidates []AutoMatchCandidate
		for i := range tenants {
			tenant := &tenants[i]
			if !samePhone(tenant.Phone, tx.PayerPhone) {
				continue
			}
			if !rentCloseEnough(tenant.MonthlyRent, tx.Amount, tolerance) {
				continue
			}
			candidates = append(candidates, AutoMatchCandidate{TenantID: tenant.ID, TenantName: tenant.FullName()})
		}

		switch len(candidates) {
		case 0:
			report.Unmatchable = append(report.Unmatchable, entry)
		case 1:
			if err := s.repos.Transaction.LinkTenant(tx.ID, candidates[0].TenantID); err != nil {
				return nil, fmt.Errorf("failed to link transaction %d: %w", tx.ID, err)
			}
			// An attributed payment moves the tenant's schedule exactly
			// like a confirmed one.
			paidOn := report.GeneratedAt
			if tx.CompletedAt != nil {
				paidOn = *tx.CompletedAt
			}
			if _, err := payment.ApplyPaidSchedule(s.repos.Tenant, candidates[0].TenantID, tx.MonthsAdvance, paidOn, report.GeneratedAt); err != nil {
				return nil, fmt.Errorf("failed to apply payment schedule for tenant %d: %w", candidates[0].TenantID, err)
			}
			entry.Linked = &candidates[0]
			report.Linked = append(report.Linked, entry)
		default:
			entry.Candidates = candidates
			report.Ambiguous = append(report.Ambiguous, entry)
		}
	}

	log.Infof("[Reconcile] auto-match linked=%d ambiguous=%d unmatchable=%d",
		len(report.Linked), len(report.Ambiguous), len(report.Unmatchable))
	return report, nil
}

// rentCloseEnough accepts a payment within tolerance (a fraction of the
// rent) of the tenant's monthly rent, in either direction.
func rentCloseEnough(rent, paid, tolerance decimal.Decimal) bool {
	if !rent.IsPositive() {
		return false
	}
	return paid.Sub(rent).Abs().LessThanOrEqual(rent.Mul(tolerance))
}

// samePhone compares numbers ignoring spaces, dashes and a leading plus.
func samePhone(a, b string) bool {
	return canonicalPhone(a) != "" && canonicalPhone(a) == canonicalPhone(b)
}

func canonicalPhone(phone string) string {
	out := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c == ' ' || c == '-' || c == '+' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
