package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carryit/rentpay/app/models"
	"github.com/carryit/rentpay/app/repository/repositorytest"
	"github.com/carryit/rentpay/internal/pkg/monitor"
	"github.com/carryit/rentpay/internal/pkg/notify"
	"github.com/carryit/rentpay/internal/pkg/payment"
	"github.com/carryit/rentpay/internal/pkg/qrpay"
	"github.com/carryit/rentpay/internal/pkg/reconcile"
	"github.com/shopspring/decimal"
)

// installTestServices wires the controllers onto in-memory repositories so
// handlers can be exercised without a database.
func installTestServices(t *testing.T) *repositorytest.TransactionRepo {
	t.Helper()
	repos := repositorytest.NewRepositories()
	servicesOnce.Do(func() {})
	qrService = qrpay.NewService(repos.PaymentRequest)
	paySvc = payment.NewService(repos, notify.NewLogNotifier())
	reconcileSvc = reconcile.NewService(repos)
	monitorSvc = monitor.NewService(repos)
	settingRepo = repos.Setting
	return repos.Transaction.(*repositorytest.TransactionRepo)
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/webhooks/mtn/callback", HandleMTNCallback)
	app.Post("/webhooks/airtel/callback", HandleAirtelCallback)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, int(5*time.Second/time.Millisecond))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func TestMTNCallbackAppliesSuccess(t *testing.T) {
	txs := installTestServices(t)
	app := newTestApp()

	txs.Seed(models.MobileTransaction{
		UnitID: 1, PayerID: 1, Amount: decimal.NewFromInt(500000),
		Provider: models.ProviderMTN, ExternalID: "ext-77",
		Status: models.TransactionStatusPending, MonthsAdvance: 1,
	})

	body := `{"financialTransactionId":"363440463","externalId":"ext-77","status":"SUCCESSFUL"}`
	status, decoded := postJSON(t, app, "/webhooks/mtn/callback", body)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, decoded["matched"])
	assert.Equal(t, true, decoded["applied"])

	stored, err := txs.GetByExternalID("ext-77")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPaid, stored.Status)
}

func TestCallbackForUnknownTransactionStillReturns200(t *testing.T) {
	installTestServices(t)
	app := newTestApp()

	body := `{"externalId":"never-seen","status":"SUCCESSFUL"}`
	status, decoded := postJSON(t, app, "/webhooks/mtn/callback", body)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, decoded["matched"])
}

func TestCallbackRetriesAreIdempotent(t *testing.T) {
	txs := installTestServices(t)
	app := newTestApp()

	txs.Seed(models.MobileTransaction{
		UnitID: 1, PayerID: 1, Amount: decimal.NewFromInt(500000),
		Provider: models.ProviderMTN, ExternalID: "ext-88",
		Status: models.TransactionStatusPending, MonthsAdvance: 1,
	})

	body := `{"externalId":"ext-88","status":"SUCCESSFUL"}`
	for i := 0; i < 3; i++ {
		status, decoded := postJSON(t, app, "/webhooks/mtn/callback", body)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, i == 0, decoded["applied"], fmt.Sprintf("delivery %d", i+1))
	}

	stored, _ := txs.GetByExternalID("ext-88")
	assert.Equal(t, models.TransactionStatusPaid, stored.Status)
}

func TestAirtelCallbackAppliesFailure(t *testing.T) {
	txs := installTestServices(t)
	app := newTestApp()

	txs.Seed(models.MobileTransaction{
		UnitID: 1, PayerID: 1, Amount: decimal.NewFromInt(500000),
		Provider: models.ProviderAirtel, ExternalID: "ext-99",
		Status: models.TransactionStatusPending, MonthsAdvance: 1,
	})

	body := `{"transaction":{"id":"ATX-1","airtel_money_id":"ext-99","status":"FAILED","message":"insufficient balance"}}`
	status, decoded := postJSON(t, app, "/webhooks/airtel/callback", body)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, decoded["applied"])

	stored, _ := txs.GetByExternalID("ext-99")
	assert.Equal(t, models.TransactionStatusFailed, stored.Status)
	assert.Equal(t, "insufficient balance", stored.FailureReason)
}

func TestMalformedCallbackIsAcknowledgedNotRetried(t *testing.T) {
	txs := installTestServices(t)
	app := newTestApp()

	pending := txs.Seed(models.MobileTransaction{
		UnitID: 1, PayerID: 1, Amount: decimal.NewFromInt(500000),
		Provider: models.ProviderMTN, ExternalID: "ext-55",
		Status: models.TransactionStatusPending, MonthsAdvance: 1,
	})

	// No identifier at all, then outright broken JSON. Both get a 200 with
	// an error body so the provider does not keep retrying, and neither
	// touches local state.
	for _, body := range []string{`{"status":"SUCCESSFUL"}`, `{not json`} {
		status, decoded := postJSON(t, app, "/webhooks/mtn/callback", body)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "error", decoded["status"])
		assert.Equal(t, false, decoded["applied"])
	}

	stored, _ := txs.GetByID(pending.ID)
	assert.Equal(t, models.TransactionStatusPending, stored.Status)
}
