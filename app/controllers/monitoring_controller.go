package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HandleReconcile builds the reconciliation report for one month. Defaults
// to the current month when month/year are omitted.
func HandleReconcile(c *fiber.Ctx) error {
	now := time.Now().UTC()
	month := c.QueryInt("month", int(now.Month()))
	year := c.QueryInt("year", now.Year())

	propertyID, err := queryUintPtr(c, "property_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid property_id")
	}
	if month < 1 || month > 12 {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "month must be between 1 and 12")
	}

	report, err := getReconcileService().Reconcile(month, year, propertyID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to build reconciliation report")
	}
	return c.JSON(report)
}

// HandleAutoMatch attributes orphan paid transactions to tenants where the
// evidence is unambiguous, optionally restricted to one property's roster.
func HandleAutoMatch(c *fiber.Ctx) error {
	propertyID, err := queryUintPtr(c, "property_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid property_id")
	}

	report, err := getReconcileService().AutoMatch(propertyID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Auto-match run failed")
	}
	return c.JSON(report)
}

// HandleRunMonitoringPass triggers one monitoring pass on demand.
func HandleRunMonitoringPass(c *fiber.Ctx) error {
	result, err := getMonitorService().RunPass()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Monitoring pass failed")
	}
	return c.JSON(result)
}

// HandleTenantCategories returns active tenants grouped by computed payment
// category.
func HandleTenantCategories(c *fiber.Ctx) error {
	propertyID, err := queryUintPtr(c, "property_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid property_id")
	}

	categories, err := getMonitorService().TenantCategories(propertyID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load tenant categories")
	}

	grouped := map[string][]interface{}{}
	for _, entry := range categories {
		grouped[entry.Category] = append(grouped[entry.Category], entry)
	}
	return c.JSON(grouped)
}

// HandlePaymentSummary returns per-category counts and rent totals.
func HandlePaymentSummary(c *fiber.Ctx) error {
	propertyID, err := queryUintPtr(c, "property_id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid property_id")
	}

	summary, err := getMonitorService().PaymentSummary(propertyID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to build payment summary")
	}
	return c.JSON(summary)
}
