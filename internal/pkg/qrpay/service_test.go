package qrpay

import (
	"testing"
	"time"

	"github.com/carryit/rentpay/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequestRepo struct {
	nextID   uint
	requests map[uint]*models.PaymentRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{nextID: 1, requests: make(map[uint]*models.PaymentRequest)}
}

func (f *fakeRequestRepo) Create(req *models.PaymentRequest) error {
	req.ID = f.nextID
	f.nextID++
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeRequestRepo) GetByID(id uint) (*models.PaymentRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, assert.AnError
	}
	cp := *req
	return &cp, nil
}

func (f *fakeRequestRepo) GetByUnitID(unitID uint, offset, limit int) ([]models.PaymentRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) GetByTenantID(tenantID uint, offset, limit int) ([]models.PaymentRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) GetByPayerID(payerID uint, offset, limit int) ([]models.PaymentRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) SetPayload(id uint, payload string) error {
	f.requests[id].Payload = payload
	return nil
}

func (f *fakeRequestRepo) MarkUsed(id uint, usedAt time.Time) error {
	f.requests[id].Status = models.RequestStatusUsed
	f.requests[id].UsedAt = &usedAt
	return nil
}

func (f *fakeRequestRepo) MarkCancelled(id uint) (bool, error) {
	req, ok := f.requests[id]
	if !ok || req.Status != models.RequestStatusActive {
		return false, nil
	}
	req.Status = models.RequestStatusCancelled
	return true, nil
}

func (f *fakeRequestRepo) ExpireStale(now time.Time) (int64, error) {
	var n int64
	for _, req := range f.requests {
		if req.Status == models.RequestStatusActive && !req.ExpiresAt.After(now) {
			req.Status = models.RequestStatusExpired
			n++
		}
	}
	return n, nil
}

func validInput() IssueInput {
	return IssueInput{
		UnitID:        3,
		PayerID:       8,
		Amount:        decimal.NewFromInt(500000),
		AccountNumber: "UNIT-A3",
		Provider:      models.ProviderMTN,
	}
}

func TestIssueCreatesRequestWithSelfReferencingPayload(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := NewService(repo)

	issued, err := svc.Issue(validInput())
	require.NoError(t, err)
	require.NotNil(t, issued.Request)

	assert.Equal(t, models.RequestStatusActive, issued.Request.Status)
	assert.NotEmpty(t, issued.Request.Payload)
	assert.NotEmpty(t, issued.QRImage)

	// The payload must lead back to exactly this row.
	id, err := DecodePayload(issued.Request.Payload)
	require.NoError(t, err)
	assert.Equal(t, issued.Request.ID, id)

	stored, err := repo.GetByID(issued.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, issued.Request.Payload, stored.Payload)
}

func TestIssueDefaultsExpiryToSevenDays(t *testing.T) {
	svc := NewService(newFakeRequestRepo())

	issued, err := svc.Issue(validInput())
	require.NoError(t, err)

	want := time.Now().UTC().AddDate(0, 0, models.DefaultRequestTTLDays)
	assert.WithinDuration(t, want, issued.Request.ExpiresAt, time.Minute)
}

func TestIssueRejectsBadInput(t *testing.T) {
	svc := NewService(newFakeRequestRepo())

	tests := []struct {
		name    string
		mutate  func(*IssueInput)
		wantErr error
	}{
		{"zero amount", func(in *IssueInput) { in.Amount = decimal.Zero }, models.ErrNonPositiveAmount},
		{"negative amount", func(in *IssueInput) { in.Amount = decimal.NewFromInt(-100) }, models.ErrNonPositiveAmount},
		{"unknown provider", func(in *IssueInput) { in.Provider = "m-pesa" }, models.ErrUnknownProvider},
		{"expiry too short", func(in *IssueInput) { in.ExpiresInDays = -1 }, ErrExpiryOutOfRange},
		{"expiry too long", func(in *IssueInput) { in.ExpiresInDays = 31 }, ErrExpiryOutOfRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Issue(in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCancelOnlyTouchesActiveRequests(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := NewService(repo)

	issued, err := svc.Issue(validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(issued.Request.ID))
	stored, _ := repo.GetByID(issued.Request.ID)
	assert.Equal(t, models.RequestStatusCancelled, stored.Status)

	// Cancelling again is rejected, the row stays cancelled.
	assert.ErrorIs(t, svc.Cancel(issued.Request.ID), ErrNotActive)
	stored, _ = repo.GetByID(issued.Request.ID)
	assert.Equal(t, models.RequestStatusCancelled, stored.Status)
}

func TestExpireStaleSweepsOnlyOverdueActives(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := NewService(repo)

	fresh, err := svc.Issue(validInput())
	require.NoError(t, err)
	stale, err := svc.Issue(validInput())
	require.NoError(t, err)
	repo.requests[stale.Request.ID].ExpiresAt = time.Now().UTC().Add(-time.Hour)

	n, err := svc.ExpireStale(time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	freshStored, _ := repo.GetByID(fresh.Request.ID)
	staleStored, _ := repo.GetByID(stale.Request.ID)
	assert.Equal(t, models.RequestStatusActive, freshStored.Status)
	assert.Equal(t, models.RequestStatusExpired, staleStored.Status)
}

func TestDecodePayloadRejectsForeignStrings(t *testing.T) {
	for _, payload := range []string{"", "https://example.com/other", "https://example.com/pay/requests/", "https://example.com/pay/requests/abc"} {
		_, err := DecodePayload(payload)
		assert.ErrorIs(t, err, ErrInvalidPayload, payload)
	}
}
