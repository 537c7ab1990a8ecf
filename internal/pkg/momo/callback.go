package momo

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeUnknown = "unknown"
)

var ErrMissingCallbackID = errors.New("callback carries no usable transaction identifier")

// Confirmation is the provider-agnostic shape every inbound callback is
// normalized to before it reaches the payment service.
type Confirmation struct {
	ExternalID   string
	ProviderTxID string
	// Outcome is the normalized verdict; ProviderStatus keeps the provider's
	// own wording (SUCCESSFUL, TS, FAILED, ...) for the audit trail.
	Outcome        string
	ProviderStatus string
	Reason         string
	RawPayload     string
}

// ParseMTNCallback normalizes an MTN MoMo callback body. MTN reports the
// caller's externalId directly and a status of SUCCESSFUL, FAILED or PENDING.
func ParseMTNCallback(body []byte) (*Confirmation, error) {
	var payload struct {
		FinancialTransactionID string `json:"financialTransactionId"`
		ExternalID             string `json:"externalId"`
		Status                 string `json:"status"`
		Reason                 string `json:"reason"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload.ExternalID == "" && payload.FinancialTransactionID == "" {
		return nil, ErrMissingCallbackID
	}

	c := &Confirmation{
		ExternalID:     payload.ExternalID,
		ProviderTxID:   payload.FinancialTransactionID,
		Outcome:        normalizeOutcome(payload.Status),
		ProviderStatus: payload.Status,
		Reason:         payload.Reason,
		RawPayload:     string(body),
	}
	if c.Outcome == OutcomeFailure && c.Reason == "" {
		c.Reason = "Payment failed"
	}
	return c, nil
}

// ParseAirtelCallback normalizes an Airtel Money callback body. Airtel nests
// everything under "transaction" and echoes the caller's reference in
// airtel_money_id.
func ParseAirtelCallback(body []byte) (*Confirmation, error) {
	var payload struct {
		Transaction struct {
			ID            string `json:"id"`
			AirtelMoneyID string `json:"airtel_money_id"`
			Status        string `json:"status"`
			Message       string `json:"message"`
		} `json:"transaction"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload.Transaction.AirtelMoneyID == "" && payload.Transaction.ID == "" {
		return nil, ErrMissingCallbackID
	}

	c := &Confirmation{
		ExternalID:     payload.Transaction.AirtelMoneyID,
		ProviderTxID:   payload.Transaction.ID,
		Outcome:        normalizeOutcome(payload.Transaction.Status),
		ProviderStatus: payload.Transaction.Status,
		Reason:         payload.Transaction.Message,
		RawPayload:     string(body),
	}
	if c.Outcome == OutcomeFailure && c.Reason == "" {
		c.Reason = "Payment failed"
	}
	return c, nil
}

func normalizeOutcome(providerStatus string) string {
	switch strings.ToUpper(strings.TrimSpace(providerStatus)) {
	case "SUCCESSFUL", "SUCCESS", "COMPLETED":
		return OutcomeSuccess
	case "FAILED", "FAILURE", "REJECTED":
		return OutcomeFailure
	default:
		return OutcomeUnknown
	}
}
