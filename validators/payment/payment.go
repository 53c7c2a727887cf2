package paymentValidator

import (
	"strings"

	"coursemaster/middleware"

	"github.com/gofiber/fiber/v2"
)

type CheckoutRequest struct {
	CourseID string `json:"courseId"`
}

func CreateCheckoutSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CheckoutRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.CourseID = strings.TrimSpace(reqData.CourseID)
		if reqData.CourseID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "courseId required", nil)
		}

		c.Locals("validatedCheckout", reqData)
		return c.Next()
	}
}

func SessionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := strings.TrimSpace(c.Params("id"))
		if sessionID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Session ID required", nil)
		}

		c.Locals("sessionID", sessionID)
		return c.Next()
	}
}
