package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/carryit/rentpay/app/models"
)

type updateSettingBody struct {
	Value string `json:"value"`
}

// HandleListSettings returns the effective configuration together with the
// persisted overrides it was built from.
func HandleListSettings(c *fiber.Ctx) error {
	stored, err := getSettingRepository().GetAll()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load settings")
	}

	overrides := make(map[string]string, len(stored))
	for _, s := range stored {
		overrides[s.Key] = s.Value
	}
	return c.JSON(fiber.Map{
		"effective": models.GetAppSettings(),
		"overrides": overrides,
		"keys":      models.SettingKeys,
	})
}

// HandleUpdateSetting upserts one operator-tunable key and reloads the
// in-memory configuration so the new value takes effect immediately.
func HandleUpdateSetting(c *fiber.Ctx) error {
	key := c.Params("key")
	if !models.IsKnownSettingKey(key) {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Unknown setting key")
	}

	var body updateSettingBody
	if err := c.BodyParser(&body); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if body.Value == "" {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "validation_failed", "value is required")
	}

	if err := getSettingRepository().SetValue(key, body.Value); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to store setting")
	}

	stored, err := getSettingRepository().GetAll()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to reload settings")
	}
	models.ApplySettings(stored)

	log.Infof("[Settings] %s updated", key)
	return c.JSON(fiber.Map{"key": key, "value": body.Value})
}
