package paymentController

import (
	"coursemaster/logger"
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/payment"
	"coursemaster/services"
	paymentValidator "coursemaster/validators/payment"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	checkout   *services.CheckoutService
	reconciler *services.Reconciler
	provider   payment.Provider
	log        *logger.Logger
}

func NewHandler(checkout *services.CheckoutService, reconciler *services.Reconciler, provider payment.Provider, log *logger.Logger) *Handler {
	return &Handler{checkout: checkout, reconciler: reconciler, provider: provider, log: log}
}

// CreateCheckoutSession charges the authenticated caller, never an email taken
// from the body.
func (h *Handler) CreateCheckoutSession(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCheckout").(*paymentValidator.CheckoutRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "courseId required", nil)
	}

	result, err := h.checkout.CreateCheckout(c.UserContext(), reqData.CourseID, middleware.GetIdentity(c).Email)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout session created!", result)
}

func (h *Handler) GetSession(c *fiber.Ctx) error {
	session, err := h.checkout.RetrieveSession(c.UserContext(), c.Locals("sessionID").(string))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session fetched successfully!", session)
}

// Webhook verifies the provider signature over the raw body before anything
// else. Verified events are acknowledged whatever the outcome, except a store
// failure, which answers 500 so the provider redelivers.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	event, err := h.provider.VerifyEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		h.log.Warn("Webhook signature verification failed", "error", err)
		return middleware.ErrorResponse(c, err)
	}

	outcome := h.reconciler.Reconcile(c.UserContext(), event)
	if outcome == models.EnrollNoopStoreFailure {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process webhook", nil)
	}
	h.log.Info("Webhook processed", "eventId", event.ID, "type", event.Type, "outcome", outcome)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
