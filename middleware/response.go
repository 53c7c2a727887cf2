package middleware

import (
	"coursemaster/apperr"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse renders err with the status of its apperr kind. Causes are
// never shown to the client.
func ErrorResponse(c *fiber.Ctx, err error) error {
	return JsonResponse(c, apperr.KindOf(err).Status(), false, apperr.MessageOf(err), nil)
}
