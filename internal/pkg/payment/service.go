// Package payment owns the mobile transaction lifecycle: initiation against
// a scanned request, and the single-writer application of provider callbacks.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carryit/rentpay/app/models"
	"github.com/carryit/rentpay/app/repository"
	"github.com/carryit/rentpay/internal/pkg/momo"
	"github.com/carryit/rentpay/internal/pkg/notify"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DaysPerRentMonth is the fixed month length used to advance next_payment_due.
const DaysPerRentMonth = 30

var (
	ErrRequestNotScannable = errors.New("payment request is no longer scannable")
	ErrNoPayeeNumber       = errors.New("no receiving number configured for this provider")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// InitiateInput is what the payer submits from the payment form.
type InitiateInput struct {
	RequestID     uint
	PayerPhone    string
	MonthsAdvance int
	IsPrepayment  bool
	Description   string
}

// ApplyResult reports what a callback did. Matched is false when no local
// transaction claims the callback's identifiers; Applied is false when the
// transaction had already left the pending state.
type ApplyResult struct {
	Matched     bool
	Applied     bool
	Transaction *models.MobileTransaction
}

// Service drives the transaction state machine.
type Service struct {
	repos      *repository.Repositories
	notifier   notify.Notifier
	gatewayFor func(provider string) (momo.Gateway, error)
	now        func() time.Time
}

// NewService wires the state machine onto the shared repositories.
func NewService(repos *repository.Repositories, notifier notify.Notifier) *Service {
	return &Service{
		repos:      repos,
		notifier:   notifier,
		gatewayFor: momo.ForProvider,
		now:        time.Now,
	}
}

// Initiate turns a scannable request into a pending transaction and asks the
// provider to collect. The external ID is minted before the provider call so
// a later callback can always be matched, even if the ack is lost.
func (s *Service) Initiate(ctx context.Context, in InitiateInput) (*models.MobileTransaction, string, error) {
	req, err := s.repos.PaymentRequest.GetByID(in.RequestID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load payment request: %w", err)
	}
	if !req.IsScannable(s.now()) {
		return nil, "", ErrRequestNotScannable
	}

	payee, err := s.payeeNumberFor(req)
	if err != nil {
		return nil, "", err
	}

	months := in.MonthsAdvance
	if months < 1 {
		months = 1
	}

	tx := &models.MobileTransaction{
		PaymentRequestID: &req.ID,
		UnitID:           req.UnitID,
		TenantID:         req.TenantID,
		PayerID:          req.PayerID,
		Amount:           req.Amount,
		Currency:         models.DefaultCurrency,
		Provider:         req.Provider,
		ExternalID:       uuid.NewString(),
		PayerPhone:       in.PayerPhone,
		PayeePhone:       payee,
		Status:           models.TransactionStatusPending,
		Reference:        req.AccountNumber,
		Description:      in.Description,
		MonthsAdvance:    months,
		IsPrepayment:     in.IsPrepayment,
	}
	if err := s.repos.Transaction.Create(tx); err != nil {
		return nil, "", fmt.Errorf("failed to create transaction: %w", err)
	}

	gateway, err := s.gatewayFor(req.Provider)
	if err != nil {
		return nil, "", err
	}

	ack, err := gateway.Initiate(ctx, in.PayerPhone, req.Amount, tx.ExternalID, tx.Reference)
	if err != nil {
		// The provider never acknowledged, so no callback will arrive for
		// this transaction. Fail it right away.
		reason := fmt.Sprintf("provider initiation failed: %v", err)
		if _, ferr := s.repos.Transaction.MarkFailed(tx.ID, s.now(), reason, ""); ferr != nil {
			log.Errorf("[Payment] could not mark transaction %d failed: %v", tx.ID, ferr)
		}
		return nil, "", fmt.Errorf("payment initiation with %s failed: %w", gateway.Name(), err)
	}

	if err := s.repos.Transaction.RecordProviderAck(tx.ID, ack.ProviderTxID, ack.ProviderStatus, ack.RawResponse); err != nil {
		return nil, "", fmt.Errorf("failed to record provider acknowledgment: %w", err)
	}
	tx.ProviderTxID = ack.ProviderTxID
	tx.ProviderStatus = ack.ProviderStatus
	tx.ProviderResponse = ack.RawResponse

	log.Infof("[Payment] initiated transaction=%d external_id=%s provider=%s amount=%s", tx.ID, tx.ExternalID, tx.Provider, tx.Amount.StringFixed(0))
	return tx, ack.Message, nil
}

// ApplyConfirmation applies one normalized provider callback. The transition
// out of pending happens exactly once regardless of how many times the
// provider retries the callback; every delivery is archived on the row.
func (s *Service) ApplyConfirmation(conf *momo.Confirmation) (*ApplyResult, error) {
	tx, err := s.lookup(conf)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		log.Warnf("[Payment] callback matches no transaction external_id=%s provider_tx_id=%s", conf.ExternalID, conf.ProviderTxID)
		return &ApplyResult{Matched: false}, nil
	}

	switch conf.Outcome {
	case momo.OutcomeSuccess:
		return s.applySuccess(tx, conf)
	case momo.OutcomeFailure:
		return s.applyFailure(tx, conf)
	default:
		// Interim status. Archive the payload, leave the state machine alone.
		if err := s.repos.Transaction.StoreCallbackPayload(tx.ID, conf.RawPayload); err != nil {
			return nil, err
		}
		return &ApplyResult{Matched: true, Applied: false, Transaction: tx}, nil
	}
}

func (s *Service) applySuccess(tx *models.MobileTransaction, conf *momo.Confirmation) (*ApplyResult, error) {
	completedAt := s.now()
	applied, err := s.repos.Transaction.MarkPaid(tx.ID, completedAt, conf.ProviderStatus, conf.RawPayload)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Duplicate or late callback. Keep the delivery on record only.
		if err := s.repos.Transaction.StoreCallbackPayload(tx.ID, conf.RawPayload); err != nil {
			return nil, err
		}
		return &ApplyResult{Matched: true, Applied: false, Transaction: tx}, nil
	}
	tx.Status = models.TransactionStatusPaid
	tx.CompletedAt = &completedAt

	if tx.PaymentRequestID != nil {
		if err := s.repos.PaymentRequest.MarkUsed(*tx.PaymentRequestID, completedAt); err != nil {
			log.Errorf("[Payment] could not mark request %d used: %v", *tx.PaymentRequestID, err)
		}
	}

	tenant := s.advanceTenant(tx, completedAt)

	// Notification is best effort and must never unwind the paid state.
	if err := s.notifier.PaymentReceived(tenant, tx.Amount, tx.Reference); err != nil {
		log.Errorf("[Payment] payment-received notification failed for transaction %d: %v", tx.ID, err)
	}

	log.Infof("[Payment] transaction %d paid external_id=%s", tx.ID, tx.ExternalID)
	return &ApplyResult{Matched: true, Applied: true, Transaction: tx}, nil
}

func (s *Service) applyFailure(tx *models.MobileTransaction, conf *momo.Confirmation) (*ApplyResult, error) {
	failedAt := s.now()
	applied, err := s.repos.Transaction.MarkFailed(tx.ID, failedAt, conf.Reason, conf.RawPayload)
	if err != nil {
		return nil, err
	}
	if !applied {
		if err := s.repos.Transaction.StoreCallbackPayload(tx.ID, conf.RawPayload); err != nil {
			return nil, err
		}
		return &ApplyResult{Matched: true, Applied: false, Transaction: tx}, nil
	}
	tx.Status = models.TransactionStatusFailed
	tx.FailedAt = &failedAt
	tx.FailureReason = conf.Reason

	var tenant *models.Tenant
	if tx.TenantID != nil {
		if t, err := s.repos.Tenant.GetByID(*tx.TenantID); err == nil {
			tenant = t
		}
	}
	if err := s.notifier.PaymentFailed(tenant, tx.Amount, conf.Reason); err != nil {
		log.Errorf("[Payment] payment-failed notification failed for transaction %d: %v", tx.ID, err)
	}

	log.Infof("[Payment] transaction %d failed external_id=%s reason=%s", tx.ID, tx.ExternalID, conf.Reason)
	return &ApplyResult{Matched: true, Applied: true, Transaction: tx}, nil
}

// advanceTenant moves the tenant's payment clock forward after a paid
// transaction and returns the refreshed tenant for notification.
func (s *Service) advanceTenant(tx *models.MobileTransaction, paidAt time.Time) *models.Tenant {
	if tx.TenantID == nil {
		return nil
	}
	tenant, err := ApplyPaidSchedule(s.repos.Tenant, *tx.TenantID, tx.MonthsAdvance, paidAt, paidAt)
	if err != nil {
		log.Errorf("[Payment] could not advance payment schedule for tenant %d: %v", *tx.TenantID, err)
	}
	return tenant
}

// Status returns the transaction for an external ID.
func (s *Service) Status(externalID string) (*models.MobileTransaction, error) {
	tx, err := s.repos.Transaction.GetByExternalID(externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// lookup resolves a callback to a local transaction, trying our own external
// ID first and the provider's transaction ID second. A nil transaction with
// nil error means the callback is for someone else's money.
func (s *Service) lookup(conf *momo.Confirmation) (*models.MobileTransaction, error) {
	if conf.ExternalID != "" {
		tx, err := s.repos.Transaction.GetByExternalID(conf.ExternalID)
		if err == nil {
			return tx, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if conf.ProviderTxID != "" {
		tx, err := s.repos.Transaction.GetByProviderTxID(conf.ProviderTxID)
		if err == nil {
			return tx, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// payeeNumberFor resolves the receiving number: the unit's property first,
// the global fallback number second.
func (s *Service) payeeNumberFor(req *models.PaymentRequest) (string, error) {
	unit, err := s.repos.Unit.GetByID(req.UnitID)
	if err == nil {
		property, perr := s.repos.Property.GetByID(unit.PropertyID)
		if perr == nil {
			if number := property.PayeeNumberFor(req.Provider); number != "" {
				return number, nil
			}
		}
	}
	if number := models.GetAppSettings().FallbackPayeeNumber(req.Provider); number != "" {
		return number, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoPayeeNumber, req.Provider)
}
