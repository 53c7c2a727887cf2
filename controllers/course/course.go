package courseController

import (
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/services"
	courseValidator "coursemaster/validators/course"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	courses *services.CourseService
}

func NewHandler(courses *services.CourseService) *Handler {
	return &Handler{courses: courses}
}

func (h *Handler) CreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	course, err := h.courses.Create(c.UserContext(), services.CourseInput{
		Title:       reqData.Title,
		Description: reqData.Description,
		Instructor:  reqData.Instructor,
		Price:       reqData.Price,
		Category:    reqData.Category,
		Tags:        reqData.Tags,
		Image:       reqData.Image,
		Syllabus:    reqData.Syllabus,
		Milestones:  reqData.Milestones,
	}, middleware.GetIdentity(c).Email)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", fiber.Map{
		"courseId": course.ID,
	})
}

func (h *Handler) ListCourses(c *fiber.Ctx) error {
	query, _ := c.Locals("validatedCourseList").(models.CourseQuery)

	courses, totalPages, err := h.courses.List(c.UserContext(), query)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses":    courses,
		"totalPages": totalPages,
	})
}

func (h *Handler) GetCourse(c *fiber.Ctx) error {
	course, err := h.courses.Get(c.UserContext(), c.Locals("courseID").(string))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course": course,
	})
}

// EnrolledStudents lists users enrolled in the course. Admin only.
func (h *Handler) EnrolledStudents(c *fiber.Ctx) error {
	students, err := h.courses.Students(c.UserContext(), c.Locals("courseID").(string))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Students fetched successfully!", students)
}
