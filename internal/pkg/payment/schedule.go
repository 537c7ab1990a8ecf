package payment

import (
	"time"

	"github.com/carryit/rentpay/app/models"
	"github.com/carryit/rentpay/app/repository"
)

// ApplyPaidSchedule records a collected payment on the tenant: the payment
// date, the due date advanced by the paid months and the paid category. It
// returns the tenant with the new values applied. Both the confirmation
// success path and reconciliation auto-match funnel through here so a
// payment moves the tenant's clock the same way no matter how it was
// attributed.
func ApplyPaidSchedule(tenants repository.TenantRepository, tenantID uint, months int, paidOn, today time.Time) (*models.Tenant, error) {
	tenant, err := tenants.GetByID(tenantID)
	if err != nil {
		return nil, err
	}
	if months < 1 {
		months = 1
	}

	lastPayment := truncateToDay(paidOn)
	nextDue := truncateToDay(today).AddDate(0, 0, DaysPerRentMonth*months)
	if err := tenants.RecordPayment(tenant.ID, lastPayment, nextDue); err != nil {
		return tenant, err
	}
	if err := tenants.SetCategory(tenant.ID, models.CategoryPaid); err != nil {
		return tenant, err
	}

	tenant.LastPaymentDate = &lastPayment
	tenant.NextPaymentDue = &nextDue
	tenant.RentPaymentStatus = models.CategoryPaid
	return tenant, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
