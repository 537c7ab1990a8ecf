package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/carryit/rentpay/internal/pkg/payment"
)

type initiatePaymentBody struct {
	PaymentRequestID uint   `json:"payment_request_id"`
	PayerPhone       string `json:"payer_phone"`
	MonthsAdvance    int    `json:"months_advance"`
	IsPrepayment     bool   `json:"is_prepayment"`
	Description      string `json:"description"`
}

// HandleInitiatePayment starts a mobile money collection for a scanned
// payment request. The response acknowledges the request only; the outcome
// arrives later through the provider callback.
func HandleInitiatePayment(c *fiber.Ctx) error {
	var body initiatePaymentBody
	if err := c.BodyParser(&body); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if body.PaymentRequestID == 0 || body.PayerPhone == "" {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "validation_failed", "payment_request_id and payer_phone are required")
	}

	tx, message, err := getPaymentService().Initiate(c.UserContext(), payment.InitiateInput{
		RequestID:     body.PaymentRequestID,
		PayerPhone:    body.PayerPhone,
		MonthsAdvance: body.MonthsAdvance,
		IsPrepayment:  body.IsPrepayment,
		Description:   body.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrRequestNotScannable):
			return errorJSON(c, fiber.StatusConflict, "not_scannable", "Payment request is expired, used or cancelled")
		case errors.Is(err, payment.ErrNoPayeeNumber):
			return errorJSON(c, fiber.StatusUnprocessableEntity, "no_payee_number", err.Error())
		default:
			return errorJSON(c, fiber.StatusBadGateway, "initiation_failed", err.Error())
		}
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"transaction": tx,
		"message":     message,
	})
}

// HandlePaymentStatus returns the current state of a transaction by its
// external ID.
func HandlePaymentStatus(c *fiber.Ctx) error {
	externalID := c.Params("external_id")
	if externalID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "external_id is required")
	}

	tx, err := getPaymentService().Status(externalID)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Transaction not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load transaction")
	}

	return c.JSON(fiber.Map{
		"external_id":     tx.ExternalID,
		"status":          tx.Status,
		"provider":        tx.Provider,
		"provider_status": tx.ProviderStatus,
		"amount":          tx.Amount,
		"currency":        tx.Currency,
		"initiated_at":    tx.InitiatedAt,
		"completed_at":    tx.CompletedAt,
		"failed_at":       tx.FailedAt,
		"failure_reason":  tx.FailureReason,
	})
}
