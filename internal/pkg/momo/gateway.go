// Package momo talks to the mobile money providers (MTN MoMo, Airtel Money).
// Every provider is driven through the same Gateway contract; the concrete
// adapter is chosen once, at initiation time.
package momo

import (
	"context"
	"fmt"

	"github.com/carryit/rentpay/app/models"
	"github.com/shopspring/decimal"
)

// InitiateResult is the provider acknowledgment for a collection request.
// The money has not moved yet at this point: the customer still has to
// approve on their handset and the final outcome arrives via callback.
type InitiateResult struct {
	ProviderTxID   string
	ProviderStatus string
	RawResponse    string
	Message        string
}

// Gateway is the uniform adapter contract for a single mobile money provider.
type Gateway interface {
	Name() string
	Initiate(ctx context.Context, payerPhone string, amount decimal.Decimal, externalID, reference string) (*InitiateResult, error)
}

// ForProvider returns the gateway adapter for a provider enum value.
func ForProvider(provider string) (Gateway, error) {
	switch provider {
	case models.ProviderMTN:
		return NewMTNGateway(), nil
	case models.ProviderAirtel:
		return NewAirtelGateway(), nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownProvider, provider)
	}
}

func sanitizePhone(phone string) string {
	out := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c == ' ' || c == '-' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
