package courseRoutes

import (
	courseController "coursemaster/controllers/course"
	courseValidator "coursemaster/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupCourseRoutes(app *fiber.App, h *courseController.Handler, jwt, admin fiber.Handler) {
	courseGroup := app.Group("/api/courses")

	courseGroup.Post("/", jwt, courseValidator.CreateCourse(), h.CreateCourse)
	courseGroup.Get("/", courseValidator.CourseList(), h.ListCourses)
	courseGroup.Get("/:id", courseValidator.CourseID(), h.GetCourse)
	courseGroup.Get("/:id/students", jwt, admin, courseValidator.CourseID(), h.EnrolledStudents)
}
