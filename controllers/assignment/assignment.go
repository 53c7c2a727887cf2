package assignmentController

import (
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/services"
	assignmentValidator "coursemaster/validators/assignment"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	assignments *services.AssignmentService
}

func NewHandler(assignments *services.AssignmentService) *Handler {
	return &Handler{assignments: assignments}
}

func (h *Handler) Submit(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSubmission").(*assignmentValidator.SubmitRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	submission, err := h.assignments.Submit(c.UserContext(), middleware.GetIdentity(c).Email, services.SubmissionInput{
		Key: models.SubmissionKey{
			CourseID:       reqData.CourseID,
			MilestoneIndex: *reqData.MilestoneIndex,
			ModuleIndex:    *reqData.ModuleIndex,
		},
		SubmissionText: reqData.SubmissionText,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment submitted successfully", fiber.Map{
		"submissionId": submission.ID,
	})
}

// MySubmission returns the caller's latest submission, or null when none exists.
func (h *Handler) MySubmission(c *fiber.Ctx) error {
	key := c.Locals("submissionKey").(models.SubmissionKey)

	submission, err := h.assignments.MySubmission(c.UserContext(), key, middleware.GetIdentity(c).Email)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission fetched", submission)
}

func (h *Handler) ModuleSubmissions(c *fiber.Ctx) error {
	key := c.Locals("submissionKey").(models.SubmissionKey)

	submissions, err := h.assignments.ModuleSubmissions(c.UserContext(), key)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched", submissions)
}

func (h *Handler) CoursesWithSubmissions(c *fiber.Ctx) error {
	courses, err := h.assignments.CoursesWithSubmissions(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses with submissions fetched", courses)
}
