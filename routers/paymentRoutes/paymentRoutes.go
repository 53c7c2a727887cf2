package paymentRoutes

import (
	paymentController "coursemaster/controllers/payment"
	paymentValidator "coursemaster/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App, h *paymentController.Handler, jwt fiber.Handler) {
	app.Post("/api/create-checkout-session", jwt, paymentValidator.CreateCheckoutSession(), h.CreateCheckoutSession)
	app.Get("/api/session/:id", paymentValidator.SessionID(), h.GetSession)

	// Signed by the provider; no session credential.
	app.Post("/webhook", h.Webhook)
}
