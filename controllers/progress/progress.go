package progressController

import (
	"coursemaster/middleware"
	"coursemaster/services"
	progressValidator "coursemaster/validators/progress"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	progress *services.ProgressService
}

func NewHandler(progress *services.ProgressService) *Handler {
	return &Handler{progress: progress}
}

// CompleteModule answers 200 for every outcome; the outcome field tells a
// fresh completion from a repeat or a missing enrollment.
func (h *Handler) CompleteModule(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCompleteModule").(*progressValidator.CompleteModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	outcome, err := h.progress.CompleteModule(c.UserContext(), middleware.PathParam(c, "email"), reqData.CourseID, *reqData.ModuleIndex)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated", fiber.Map{
		"outcome": outcome,
	})
}

func (h *Handler) SetAssignmentMark(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedAssignmentMark").(*progressValidator.AssignmentMarkRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	err := h.progress.SetAssignmentMark(c.UserContext(), middleware.PathParam(c, "email"),
		reqData.CourseID, *reqData.MilestoneIndex, *reqData.ModuleIndex, *reqData.Mark)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment mark saved", nil)
}

func (h *Handler) SaveMcq(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedMcq").(*progressValidator.McqResultRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	err := h.progress.SaveMcqResult(c.UserContext(), middleware.GetIdentity(c).Email, services.McqInput{
		CourseID:      reqData.CourseID,
		ModuleIndex:   *reqData.ModuleIndex,
		QuestionIndex: *reqData.QuestionIndex,
		IsCorrect:     reqData.IsCorrect,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "MCQ result saved", nil)
}
