package router

import (
	"github.com/carryit/rentpay/app/controllers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "rentpay api",
		})
	})

	v1 := api.Group("/v1")

	// QR payment requests
	requests := v1.Group("/payment-requests")
	requests.Post("/", controllers.HandleCreatePaymentRequest)
	requests.Get("/", controllers.HandleListPaymentRequests)
	requests.Get("/resolve", controllers.HandleResolvePayload)
	requests.Get("/:id", controllers.HandleGetPaymentRequest)
	requests.Post("/:id/cancel", controllers.HandleCancelPaymentRequest)

	// Mobile money transactions
	payments := v1.Group("/mobile-payments")
	payments.Post("/", controllers.HandleInitiatePayment)
	payments.Get("/:external_id", controllers.HandlePaymentStatus)

	// Reconciliation and monitoring
	reconciliation := v1.Group("/reconciliation")
	reconciliation.Get("/", controllers.HandleReconcile)
	reconciliation.Post("/auto-match", controllers.HandleAutoMatch)

	monitoring := v1.Group("/monitoring")
	monitoring.Post("/run", controllers.HandleRunMonitoringPass)
	monitoring.Get("/categories", controllers.HandleTenantCategories)
	monitoring.Get("/summary", controllers.HandlePaymentSummary)

	// Operator-tunable configuration
	settings := v1.Group("/settings")
	settings.Get("/", controllers.HandleListSettings)
	settings.Put("/:key", controllers.HandleUpdateSetting)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
