// Package monitor computes rent payment categories for tenants and runs the
// periodic pass that persists them.
package monitor

import (
	"time"

	"github.com/carryit/rentpay/app/models"
)

// OverdueGraceDays is how many days past the due date a tenant stays "due"
// before tipping into "overdue".
const OverdueGraceDays = 7

// Categorize computes the payment category for a tenant as of today. The
// move-out override wins over everything; a tenant with no due date on
// record has nothing to be late on yet.
func Categorize(tenant *models.Tenant, today time.Time) string {
	if !tenant.IsActive {
		return models.CategoryMovedOut
	}
	if tenant.MoveOutDate != nil && daysBetween(*tenant.MoveOutDate, today) >= 0 {
		return models.CategoryMovedOut
	}
	if tenant.NextPaymentDue == nil {
		return models.CategoryPending
	}

	days := daysBetween(*tenant.NextPaymentDue, today)
	switch {
	case days > OverdueGraceDays:
		return models.CategoryOverdue
	case days >= 0:
		return models.CategoryDue
	default:
		return models.CategoryPending
	}
}

// DaysOverdue returns how many whole days past due a tenant is, or zero when
// not yet due or no due date exists.
func DaysOverdue(tenant *models.Tenant, today time.Time) int {
	if tenant.NextPaymentDue == nil {
		return 0
	}
	days := daysBetween(*tenant.NextPaymentDue, today)
	if days < 0 {
		return 0
	}
	return days
}

// daysBetween counts whole calendar days from a to b, negative when b is
// before a. Both are truncated to dates first so time-of-day never shifts
// the category.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
