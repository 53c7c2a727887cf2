package userRoutes

import (
	progressController "coursemaster/controllers/progress"
	userController "coursemaster/controllers/userControllers"
	"coursemaster/middleware"
	"coursemaster/store"
	progressValidator "coursemaster/validators/progress"
	userValidator "coursemaster/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes mounts the per-user routes. Mutating /:email routes only
// accept the user named in the path; the admin lookup also accepts admins.
func SetupUserRoutes(app *fiber.App, h *userController.Handler, progress *progressController.Handler, jwt fiber.Handler, users store.UserStore) {
	self := middleware.RequireSelf("email")

	userGroup := app.Group("/api/users")
	userGroup.Patch("/:email", jwt, self, userValidator.UpdateProfile(), h.UpdateProfile)
	userGroup.Patch("/:email/completeModule", jwt, self, progressValidator.CompleteModule(), progress.CompleteModule)
	userGroup.Patch("/:email/assignment-mark", jwt, self, progressValidator.AssignmentMark(), progress.SetAssignmentMark)

	app.Get("/users/admin/:email", jwt, middleware.RequireSelfOrAdmin("email", users), h.IsAdmin)
}
