package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/carryit/rentpay/internal/pkg/momo"
)

// HandleMTNCallback receives MTN MoMo payment callbacks.
func HandleMTNCallback(c *fiber.Ctx) error {
	conf, err := momo.ParseMTNCallback(c.Body())
	if err != nil {
		log.Warnf("[Webhook] unparseable MTN callback: %v", err)
		return acknowledgeBadCallback(c)
	}
	return applyCallback(c, conf)
}

// HandleAirtelCallback receives Airtel Money payment callbacks.
func HandleAirtelCallback(c *fiber.Ctx) error {
	conf, err := momo.ParseAirtelCallback(c.Body())
	if err != nil {
		log.Warnf("[Webhook] unparseable Airtel callback: %v", err)
		return acknowledgeBadCallback(c)
	}
	return applyCallback(c, conf)
}

// acknowledgeBadCallback answers 200 with an error body. A non-2xx status
// would only make the provider retry a delivery we can never parse, so the
// failure is logged here and swallowed on the wire.
func acknowledgeBadCallback(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "error",
		"message": "Invalid callback body",
		"matched": false,
		"applied": false,
	})
}

// applyCallback pushes a normalized confirmation through the state machine.
// Callbacks that match no local transaction are acknowledged with 200 all
// the same, for the same retry reason.
func applyCallback(c *fiber.Ctx, conf *momo.Confirmation) error {
	result, err := getPaymentService().ApplyConfirmation(conf)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to process callback")
	}

	return c.JSON(fiber.Map{
		"matched": result.Matched,
		"applied": result.Applied,
	})
}
