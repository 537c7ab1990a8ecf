package router

import (
	"github.com/carryit/rentpay/app/controllers"

	"github.com/gofiber/fiber/v2"
)

type WebhookRouter struct {
}

// InstallRouter registers the provider callback endpoints. They sit outside
// the rate-limited API group: provider retries must never be throttled away.
func (h WebhookRouter) InstallRouter(app *fiber.App) {
	webhooks := app.Group("/webhooks")
	webhooks.Post("/mtn/callback", controllers.HandleMTNCallback)
	webhooks.Post("/airtel/callback", controllers.HandleAirtelCallback)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}
