package assignmentRoutes

import (
	assignmentController "coursemaster/controllers/assignment"
	assignmentValidator "coursemaster/validators/assignment"

	"github.com/gofiber/fiber/v2"
)

func SetupAssignmentRoutes(app *fiber.App, h *assignmentController.Handler, jwt, admin fiber.Handler) {
	assignmentGroup := app.Group("/api/assignments", jwt)

	assignmentGroup.Post("/submit", assignmentValidator.Submit(), h.Submit)
	assignmentGroup.Get("/submission", assignmentValidator.SubmissionKey(), h.MySubmission)
	assignmentGroup.Get("/submissions/admin", admin, assignmentValidator.SubmissionKey(), h.ModuleSubmissions)
	assignmentGroup.Get("/all-courses", admin, h.CoursesWithSubmissions)
}
