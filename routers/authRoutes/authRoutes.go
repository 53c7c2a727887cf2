package authRoutes

import (
	authController "coursemaster/controllers/auth"
	authValidator "coursemaster/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, h *authController.Handler, jwt fiber.Handler) {
	authGroup := app.Group("/api")

	authGroup.Post("/register", authValidator.Register(), h.Register)
	authGroup.Post("/login", authValidator.Login(), h.Login)
	authGroup.Post("/logout", h.Logout)
	authGroup.Get("/me", jwt, h.Me)
}
