package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carryit/rentpay/app/models"
	"github.com/carryit/rentpay/app/repository"
	"github.com/carryit/rentpay/app/repository/repositorytest"
	"github.com/carryit/rentpay/internal/pkg/momo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	received []string
	failed   []string
	sendErr  error
}

func (n *recordingNotifier) PaymentReceived(tenant *models.Tenant, amount decimal.Decimal, reference string) error {
	n.received = append(n.received, reference)
	return n.sendErr
}

func (n *recordingNotifier) PaymentFailed(tenant *models.Tenant, amount decimal.Decimal, reason string) error {
	n.failed = append(n.failed, reason)
	return n.sendErr
}

type stubGateway struct {
	err error
}

func (g *stubGateway) Name() string { return "Stub Money" }

func (g *stubGateway) Initiate(ctx context.Context, payerPhone string, amount decimal.Decimal, externalID, reference string) (*momo.InitiateResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &momo.InitiateResult{
		ProviderTxID:   "STUB-" + externalID,
		ProviderStatus: "PENDING",
		RawResponse:    `{"status":"PENDING"}`,
		Message:        "approve on handset",
	}, nil
}

type fixture struct {
	svc      *Service
	repos    *repository.Repositories
	requests *repositorytest.PaymentRequestRepo
	txs      *repositorytest.TransactionRepo
	tenants  *repositorytest.TenantRepo
	notifier *recordingNotifier
	gateway  *stubGateway
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repositorytest.NewRepositories()
	f := &fixture{
		repos:    repos,
		requests: repos.PaymentRequest.(*repositorytest.PaymentRequestRepo),
		txs:      repos.Transaction.(*repositorytest.TransactionRepo),
		tenants:  repos.Tenant.(*repositorytest.TenantRepo),
		notifier: &recordingNotifier{},
		gateway:  &stubGateway{},
		now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(repos, f.notifier)
	f.svc.gatewayFor = func(provider string) (momo.Gateway, error) { return f.gateway, nil }
	f.svc.now = func() time.Time { return f.now }

	repos.Property.(*repositorytest.PropertyRepo).Seed(models.Property{
		ID: 1, Name: "Sunrise Apartments", MTNMobileMoneyNumber: "256770000001",
	})
	repos.Unit.(*repositorytest.UnitRepo).Seed(models.Unit{
		ID: 1, PropertyID: 1, UnitNumber: "A3", Status: models.UnitStatusOccupied,
	})
	return f
}

func (f *fixture) seedTenant() *models.Tenant {
	return f.tenants.Seed(models.Tenant{
		ID: 5, FirstName: "Grace", LastName: "Okello", Email: "grace@example.com",
		Phone: "256770000005", PropertyID: 1, UnitID: 1,
		MonthlyRent: decimal.NewFromInt(500000), IsActive: true,
		RentPaymentStatus: models.CategoryDue,
		MoveInDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}

func (f *fixture) seedRequest(tenantID *uint) *models.PaymentRequest {
	return f.requests.Seed(models.PaymentRequest{
		UnitID: 1, TenantID: tenantID, PayerID: 9,
		Amount: decimal.NewFromInt(500000), AccountNumber: "UNIT-A3",
		Provider: models.ProviderMTN, Status: models.RequestStatusActive,
		ExpiresAt: f.now.AddDate(0, 0, 7),
	})
}

func (f *fixture) initiate(t *testing.T, req *models.PaymentRequest, months int) *models.MobileTransaction {
	t.Helper()
	tx, _, err := f.svc.Initiate(context.Background(), InitiateInput{
		RequestID: req.ID, PayerPhone: "256770000009", MonthsAdvance: months,
	})
	require.NoError(t, err)
	return tx
}

func successCallback(externalID string) *momo.Confirmation {
	return &momo.Confirmation{
		ExternalID: externalID, ProviderTxID: "MP-1", Outcome: momo.OutcomeSuccess,
		ProviderStatus: "SUCCESSFUL", RawPayload: `{"status":"SUCCESSFUL"}`,
	}
}

func TestInitiateCreatesPendingTransaction(t *testing.T) {
	f := newFixture(t)
	tenant := f.seedTenant()
	req := f.seedRequest(&tenant.ID)

	tx, msg, err := f.svc.Initiate(context.Background(), InitiateInput{
		RequestID: req.ID, PayerPhone: "256 770-000-009",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusPending, tx.Status)
	assert.NotEmpty(t, tx.ExternalID)
	assert.Equal(t, "STUB-"+tx.ExternalID, tx.ProviderTxID)
	assert.Equal(t, "256770000001", tx.PayeePhone)
	assert.Equal(t, req.Amount, tx.Amount)
	assert.Equal(t, 1, tx.MonthsAdvance)
	assert.Equal(t, "approve on handset", msg)

	stored, err := f.txs.GetByExternalID(tx.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, stored.Status)
	assert.Equal(t, `{"status":"PENDING"}`, stored.ProviderResponse)
}

func TestInitiateRejectsUnscannableRequests(t *testing.T) {
	f := newFixture(t)

	for _, status := range []string{models.RequestStatusUsed, models.RequestStatusExpired, models.RequestStatusCancelled} {
		req := f.seedRequest(nil)
		f.requests.Requests[req.ID].Status = status

		_, _, err := f.svc.Initiate(context.Background(), InitiateInput{RequestID: req.ID, PayerPhone: "256770000009"})
		assert.ErrorIs(t, err, ErrRequestNotScannable, status)
	}

	// Active but past its expiry is equally dead.
	req := f.seedRequest(nil)
	f.requests.Requests[req.ID].ExpiresAt = f.now.Add(-time.Minute)
	_, _, err := f.svc.Initiate(context.Background(), InitiateInput{RequestID: req.ID, PayerPhone: "256770000009"})
	assert.ErrorIs(t, err, ErrRequestNotScannable)
}

func TestInitiateMarksTransactionFailedWhenProviderRejects(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(nil)
	f.gateway.err = errors.New("provider unreachable")

	_, _, err := f.svc.Initiate(context.Background(), InitiateInput{RequestID: req.ID, PayerPhone: "256770000009"})
	require.Error(t, err)

	// The row still exists so the attempt is auditable, but it is failed.
	require.Len(t, f.txs.Transactions, 1)
	for _, tx := range f.txs.Transactions {
		assert.Equal(t, models.TransactionStatusFailed, tx.Status)
		assert.Contains(t, tx.FailureReason, "provider unreachable")
	}
}

func TestSuccessCallbackAppliesAllEffects(t *testing.T) {
	f := newFixture(t)
	tenant := f.seedTenant()
	req := f.seedRequest(&tenant.ID)
	tx := f.initiate(t, req, 2)

	res, err := f.svc.ApplyConfirmation(successCallback(tx.ExternalID))
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.True(t, res.Applied)

	stored, _ := f.txs.GetByID(tx.ID)
	assert.Equal(t, models.TransactionStatusPaid, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, `{"status":"SUCCESSFUL"}`, stored.CallbackPayload)
	// The row keeps the provider's own wording, not our normalized verdict.
	assert.Equal(t, "SUCCESSFUL", stored.ProviderStatus)

	storedReq, _ := f.requests.GetByID(req.ID)
	assert.Equal(t, models.RequestStatusUsed, storedReq.Status)
	require.NotNil(t, storedReq.UsedAt)

	storedTenant, _ := f.tenants.GetByID(tenant.ID)
	assert.Equal(t, models.CategoryPaid, storedTenant.RentPaymentStatus)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NotNil(t, storedTenant.LastPaymentDate)
	require.NotNil(t, storedTenant.NextPaymentDue)
	assert.Equal(t, today, *storedTenant.LastPaymentDate)
	assert.Equal(t, today.AddDate(0, 0, 60), *storedTenant.NextPaymentDue)

	assert.Equal(t, []string{"UNIT-A3"}, f.notifier.received)
}

func TestDuplicateSuccessCallbackIsNoOp(t *testing.T) {
	f := newFixture(t)
	tenant := f.seedTenant()
	req := f.seedRequest(&tenant.ID)
	tx := f.initiate(t, req, 1)

	first, err := f.svc.ApplyConfirmation(successCallback(tx.ExternalID))
	require.NoError(t, err)
	require.True(t, first.Applied)

	dueAfterFirst := *f.tenants.Tenants[tenant.ID].NextPaymentDue

	second, err := f.svc.ApplyConfirmation(successCallback(tx.ExternalID))
	require.NoError(t, err)
	assert.True(t, second.Matched)
	assert.False(t, second.Applied)

	// State moved exactly once: no double date advance, no second notification.
	assert.Equal(t, dueAfterFirst, *f.tenants.Tenants[tenant.ID].NextPaymentDue)
	assert.Len(t, f.notifier.received, 1)
}

func TestFailureAfterSuccessDoesNotRegress(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(nil)
	tx := f.initiate(t, req, 1)

	_, err := f.svc.ApplyConfirmation(successCallback(tx.ExternalID))
	require.NoError(t, err)

	res, err := f.svc.ApplyConfirmation(&momo.Confirmation{
		ExternalID: tx.ExternalID, Outcome: momo.OutcomeFailure, Reason: "late rejection",
		RawPayload: `{"status":"FAILED"}`,
	})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.False(t, res.Applied)

	stored, _ := f.txs.GetByID(tx.ID)
	assert.Equal(t, models.TransactionStatusPaid, stored.Status)
	// The contradictory delivery is still archived.
	assert.Equal(t, `{"status":"FAILED"}`, stored.CallbackPayload)
}

func TestFailureCallbackRecordsReasonAndNotifies(t *testing.T) {
	f := newFixture(t)
	tenant := f.seedTenant()
	req := f.seedRequest(&tenant.ID)
	tx := f.initiate(t, req, 1)

	res, err := f.svc.ApplyConfirmation(&momo.Confirmation{
		ExternalID: tx.ExternalID, Outcome: momo.OutcomeFailure, Reason: "insufficient funds",
		RawPayload: `{"status":"FAILED","reason":"insufficient funds"}`,
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)

	stored, _ := f.txs.GetByID(tx.ID)
	assert.Equal(t, models.TransactionStatusFailed, stored.Status)
	assert.Equal(t, "insufficient funds", stored.FailureReason)
	require.NotNil(t, stored.FailedAt)

	// Tenant clock untouched, request still scannable for a retry.
	storedTenant, _ := f.tenants.GetByID(tenant.ID)
	assert.Nil(t, storedTenant.LastPaymentDate)
	storedReq, _ := f.requests.GetByID(req.ID)
	assert.Equal(t, models.RequestStatusActive, storedReq.Status)

	assert.Equal(t, []string{"insufficient funds"}, f.notifier.failed)
}

func TestUnmatchedCallbackIsAcceptedQuietly(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.ApplyConfirmation(successCallback("no-such-external-id"))
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.False(t, res.Applied)
}

func TestCallbackMatchesByProviderTxIDFallback(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(nil)
	tx := f.initiate(t, req, 1)

	res, err := f.svc.ApplyConfirmation(&momo.Confirmation{
		ProviderTxID: tx.ProviderTxID, Outcome: momo.OutcomeSuccess, RawPayload: "{}",
	})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.True(t, res.Applied)
}

func TestUnknownOutcomeOnlyArchivesPayload(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(nil)
	tx := f.initiate(t, req, 1)

	res, err := f.svc.ApplyConfirmation(&momo.Confirmation{
		ExternalID: tx.ExternalID, Outcome: momo.OutcomeUnknown, RawPayload: `{"status":"PENDING"}`,
	})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.False(t, res.Applied)

	stored, _ := f.txs.GetByID(tx.ID)
	assert.Equal(t, models.TransactionStatusPending, stored.Status)
	assert.Equal(t, `{"status":"PENDING"}`, stored.CallbackPayload)
}

func TestNotificationFailureNeverUnwindsPaidState(t *testing.T) {
	f := newFixture(t)
	tenant := f.seedTenant()
	req := f.seedRequest(&tenant.ID)
	tx := f.initiate(t, req, 1)
	f.notifier.sendErr = errors.New("smtp down")

	res, err := f.svc.ApplyConfirmation(successCallback(tx.ExternalID))
	require.NoError(t, err)
	assert.True(t, res.Applied)

	stored, _ := f.txs.GetByID(tx.ID)
	assert.Equal(t, models.TransactionStatusPaid, stored.Status)
	storedTenant, _ := f.tenants.GetByID(tenant.ID)
	assert.Equal(t, models.CategoryPaid, storedTenant.RentPaymentStatus)
}

func TestStatusLookup(t *testing.T) {
	f := newFixture(t)
	req := f.seedRequest(nil)
	tx := f.initiate(t, req, 1)

	got, err := f.svc.Status(tx.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)

	_, err = f.svc.Status("missing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}
