package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carryit/rentpay/app/models"
	"github.com/carryit/rentpay/app/repository"
	"github.com/carryit/rentpay/internal/pkg/qrpay"
)

type createRequestBody struct {
	UnitID        uint            `json:"unit_id"`
	TenantID      *uint           `json:"tenant_id"`
	PayerID       uint            `json:"payer_id"`
	Amount        decimal.Decimal `json:"amount"`
	AccountNumber string          `json:"account_number"`
	Provider      string          `json:"provider"`
	ExpiresInDays int             `json:"expires_in_days"`
}

// HandleCreatePaymentRequest issues a new QR payment request.
func HandleCreatePaymentRequest(c *fiber.Ctx) error {
	var body createRequestBody
	if err := c.BodyParser(&body); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	issued, err := getQRService().Issue(qrpay.IssueInput{
		UnitID:        body.UnitID,
		TenantID:      body.TenantID,
		PayerID:       body.PayerID,
		Amount:        body.Amount,
		AccountNumber: body.AccountNumber,
		Provider:      body.Provider,
		ExpiresInDays: body.ExpiresInDays,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNonPositiveAmount),
			errors.Is(err, models.ErrUnknownProvider),
			errors.Is(err, qrpay.ErrExpiryOutOfRange):
			return errorJSON(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
		default:
			return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create payment request")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment_request": issued.Request,
		"qr_image":        issued.QRImage,
	})
}

// HandleGetPaymentRequest returns one payment request by ID.
func HandleGetPaymentRequest(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid payment request ID")
	}

	req, err := repository.GetGlobalFactory().GetPaymentRequestRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Payment request not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load payment request")
	}

	return c.JSON(fiber.Map{
		"payment_request": req,
		"scannable":       req.IsScannable(time.Now()),
	})
}

// HandleResolvePayload exchanges a scanned payload for the payment request
// it was issued for.
func HandleResolvePayload(c *fiber.Ctx) error {
	payload := c.Query("payload")
	if payload == "" {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "payload is required")
	}

	req, err := getQRService().Resolve(payload)
	if err != nil {
		switch {
		case errors.Is(err, qrpay.ErrInvalidPayload):
			return errorJSON(c, fiber.StatusUnprocessableEntity, "invalid_payload", "Payload does not reference a payment request")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Payment request not found")
		default:
			return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to resolve payload")
		}
	}

	return c.JSON(fiber.Map{
		"payment_request": req,
		"scannable":       req.IsScannable(time.Now()),
	})
}

// HandleCancelPaymentRequest cancels an active payment request.
func HandleCancelPaymentRequest(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid payment request ID")
	}

	if err := getQRService().Cancel(id); err != nil {
		if errors.Is(err, qrpay.ErrNotActive) {
			return errorJSON(c, fiber.StatusConflict, "not_active", "Only active payment requests can be cancelled")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to cancel payment request")
	}

	return c.JSON(fiber.Map{"id": id, "status": models.RequestStatusCancelled})
}

// HandleListPaymentRequests lists requests filtered by unit, tenant or payer.
func HandleListPaymentRequests(c *fiber.Ctx) error {
	offset, limit := paging(c)
	repo := repository.GetGlobalFactory().GetPaymentRequestRepository()

	unitID, err := queryUintPtr(c, "unit_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid unit_id")
	}
	tenantID, err := queryUintPtr(c, "tenant_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid tenant_id")
	}
	payerID, err := queryUintPtr(c, "payer_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid payer_id")
	}

	var requests []models.PaymentRequest
	switch {
	case unitID != nil:
		requests, err = repo.GetByUnitID(*unitID, offset, limit)
	case tenantID != nil:
		requests, err = repo.GetByTenantID(*tenantID, offset, limit)
	case payerID != nil:
		requests, err = repo.GetByPayerID(*payerID, offset, limit)
	default:
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "One of unit_id, tenant_id or payer_id is required")
	}
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to list payment requests")
	}

	return c.JSON(fiber.Map{
		"payment_requests": requests,
		"offset":           offset,
		"limit":            limit,
		"count":            len(requests),
	})
}
