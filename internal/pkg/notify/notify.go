// Package notify delivers payment notifications to tenants and operators.
// Delivery is best effort: a failed send is logged and reported, but callers
// must never unwind payment state because of it.
package notify

import (
	"fmt"

	"github.com/carryit/rentpay/app/models"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// Notifier sends a human-readable message about a payment event.
type Notifier interface {
	PaymentReceived(tenant *models.Tenant, amount decimal.Decimal, reference string) error
	PaymentFailed(tenant *models.Tenant, amount decimal.Decimal, reason string) error
}

// EmailNotifier delivers notifications over SMTP to the tenant's address.
type EmailNotifier struct{}

func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{}
}

func (n *EmailNotifier) PaymentReceived(tenant *models.Tenant, amount decimal.Decimal, reference string) error {
	if tenant == nil || tenant.Email == "" {
		log.Infof("[Notify] payment received, no tenant email, reference=%s amount=%s", reference, amount.StringFixed(0))
		return nil
	}
	subject := "Rent payment received"
	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>We have received your rent payment of %s %s (reference %s). Thank you.</p>",
		tenant.FullName(), models.DefaultCurrency, amount.StringFixed(0), reference,
	)
	return SendMail(tenant.Email, subject, body)
}

func (n *EmailNotifier) PaymentFailed(tenant *models.Tenant, amount decimal.Decimal, reason string) error {
	if tenant == nil || tenant.Email == "" {
		log.Infof("[Notify] payment failed, no tenant email, amount=%s reason=%s", amount.StringFixed(0), reason)
		return nil
	}
	subject := "Rent payment failed"
	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>Your rent payment of %s %s could not be completed: %s. Please try again or contact your property manager.</p>",
		tenant.FullName(), models.DefaultCurrency, amount.StringFixed(0), reason,
	)
	return SendMail(tenant.Email, subject, body)
}

// LogNotifier writes notifications to the application log only. It is the
// fallback when SMTP is not configured and the default in tests.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) PaymentReceived(tenant *models.Tenant, amount decimal.Decimal, reference string) error {
	name := "unknown tenant"
	if tenant != nil {
		name = tenant.FullName()
	}
	log.Infof("[Notify] payment received tenant=%s amount=%s reference=%s", name, amount.StringFixed(0), reference)
	return nil
}

func (n *LogNotifier) PaymentFailed(tenant *models.Tenant, amount decimal.Decimal, reason string) error {
	name := "unknown tenant"
	if tenant != nil {
		name = tenant.FullName()
	}
	log.Infof("[Notify] payment failed tenant=%s amount=%s reason=%s", name, amount.StringFixed(0), reason)
	return nil
}
