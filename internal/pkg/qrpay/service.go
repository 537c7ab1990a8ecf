// Package qrpay issues scannable payment requests. Creation is two-phase:
// the row is inserted first to obtain its ID, then the payload embedding
// that ID is written back and rendered as a QR image.
package qrpay

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/carryit/rentpay/app/models"
	"github.com/carryit/rentpay/app/repository"
	"github.com/carryit/rentpay/internal/pkg/env"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	minExpiryDays = 1
	maxExpiryDays = 30
	qrImageSize   = 256
)

var (
	ErrExpiryOutOfRange = fmt.Errorf("expires_in_days must be between %d and %d", minExpiryDays, maxExpiryDays)
	ErrNotActive        = errors.New("payment request is not active")
)

// IssueInput carries everything needed to issue a request.
type IssueInput struct {
	UnitID        uint
	TenantID      *uint
	PayerID       uint
	Amount        decimal.Decimal
	AccountNumber string
	Provider      string
	ExpiresInDays int
}

// Issued is the result of a successful issue call: the stored request plus
// the rendered QR image (base64 PNG).
type Issued struct {
	Request *models.PaymentRequest
	QRImage string
}

// Service issues and manages QR payment requests.
type Service struct {
	repo    repository.PaymentRequestRepository
	baseURL string
}

// NewService creates a QR issuer from an injected repository.
func NewService(repo repository.PaymentRequestRepository) *Service {
	return &Service{
		repo:    repo,
		baseURL: env.GetEnv("APP_BASE_URL", "http://localhost:4000"),
	}
}

// Issue validates the input, creates the request row, writes back the
// payload referencing the new row and renders the scannable image. The row
// is the only side effect.
func (s *Service) Issue(in IssueInput) (*Issued, error) {
	if !in.Amount.IsPositive() {
		return nil, models.ErrNonPositiveAmount
	}
	if !models.IsKnownProvider(in.Provider) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownProvider, in.Provider)
	}
	days := in.ExpiresInDays
	if days == 0 {
		days = models.DefaultRequestTTLDays
	}
	if days < minExpiryDays || days > maxExpiryDays {
		return nil, ErrExpiryOutOfRange
	}

	req := &models.PaymentRequest{
		UnitID:        in.UnitID,
		TenantID:      in.TenantID,
		PayerID:       in.PayerID,
		Amount:        in.Amount,
		AccountNumber: in.AccountNumber,
		Provider:      in.Provider,
		Status:        models.RequestStatusActive,
		ExpiresAt:     time.Now().UTC().AddDate(0, 0, days),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(req); err != nil {
		return nil, err
	}

	// Payload needs the row's own ID, so it is generated after the insert.
	payload := EncodePayload(s.baseURL, req.ID)
	if err := s.repo.SetPayload(req.ID, payload); err != nil {
		return nil, err
	}
	req.Payload = payload

	img, err := RenderImage(payload)
	if err != nil {
		return nil, err
	}

	return &Issued{Request: req, QRImage: img}, nil
}

// Resolve returns the request a payload was issued for.
func (s *Service) Resolve(payload string) (*models.PaymentRequest, error) {
	id, err := DecodePayload(payload)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

// Cancel transitions an active request to cancelled. Used and expired
// requests are left untouched.
func (s *Service) Cancel(id uint) error {
	cancelled, err := s.repo.MarkCancelled(id)
	if err != nil {
		return err
	}
	if !cancelled {
		return ErrNotActive
	}
	return nil
}

// ExpireStale sweeps active requests whose expiry has passed and returns how
// many were transitioned.
func (s *Service) ExpireStale(now time.Time) (int64, error) {
	return s.repo.ExpireStale(now)
}

// RenderImage renders a payload into a base64-encoded PNG.
func RenderImage(payload string) (string, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to render QR image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
