package momo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMTNCallback(t *testing.T) {
	tests := []struct {
		name               string
		body               string
		wantOutcome        string
		wantProviderStatus string
		wantReason         string
	}{
		{
			"successful",
			`{"financialTransactionId":"363440463","externalId":"ext-1","amount":"500000","currency":"UGX","status":"SUCCESSFUL"}`,
			OutcomeSuccess, "SUCCESSFUL", "",
		},
		{
			"failed with reason",
			`{"externalId":"ext-2","status":"FAILED","reason":"PAYER_NOT_FOUND"}`,
			OutcomeFailure, "FAILED", "PAYER_NOT_FOUND",
		},
		{
			"failed without reason gets a default",
			`{"externalId":"ext-3","status":"FAILED"}`,
			OutcomeFailure, "FAILED", "Payment failed",
		},
		{
			"pending maps to unknown",
			`{"externalId":"ext-4","status":"PENDING"}`,
			OutcomeUnknown, "PENDING", "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conf, err := ParseMTNCallback([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.wantOutcome, conf.Outcome)
			assert.Equal(t, tc.wantProviderStatus, conf.ProviderStatus)
			assert.Equal(t, tc.wantReason, conf.Reason)
			assert.Equal(t, tc.body, conf.RawPayload)
		})
	}
}

func TestParseMTNCallbackRejectsBodiesWithoutIdentifiers(t *testing.T) {
	_, err := ParseMTNCallback([]byte(`{"status":"SUCCESSFUL"}`))
	assert.ErrorIs(t, err, ErrMissingCallbackID)

	_, err = ParseMTNCallback([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseAirtelCallback(t *testing.T) {
	body := `{"transaction":{"id":"BBZMiscxy","airtel_money_id":"ext-9","status":"SUCCESS","message":"Paid"}}`
	conf, err := ParseAirtelCallback([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "ext-9", conf.ExternalID)
	assert.Equal(t, "BBZMiscxy", conf.ProviderTxID)
	assert.Equal(t, OutcomeSuccess, conf.Outcome)
	assert.Equal(t, "SUCCESS", conf.ProviderStatus)
	assert.Equal(t, body, conf.RawPayload)

	failed, err := ParseAirtelCallback([]byte(`{"transaction":{"airtel_money_id":"ext-10","status":"FAILED"}}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, failed.Outcome)
	assert.Equal(t, "Payment failed", failed.Reason)

	_, err = ParseAirtelCallback([]byte(`{"transaction":{"status":"SUCCESS"}}`))
	assert.ErrorIs(t, err, ErrMissingCallbackID)
}

func TestNormalizeOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, normalizeOutcome(" successful "))
	assert.Equal(t, OutcomeSuccess, normalizeOutcome("SUCCESS"))
	assert.Equal(t, OutcomeFailure, normalizeOutcome("rejected"))
	assert.Equal(t, OutcomeUnknown, normalizeOutcome("TIMEOUT_WAITING"))
	assert.Equal(t, OutcomeUnknown, normalizeOutcome(""))
}
