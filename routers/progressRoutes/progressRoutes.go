package progressRoutes

import (
	progressController "coursemaster/controllers/progress"
	progressValidator "coursemaster/validators/progress"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressRoutes(app *fiber.App, h *progressController.Handler, jwt fiber.Handler) {
	app.Post("/api/save-mcq", jwt, progressValidator.SaveMcq(), h.SaveMcq)
}
