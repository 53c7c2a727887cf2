package progressValidator

import (
	"strings"

	"coursemaster/middleware"

	"github.com/gofiber/fiber/v2"
)

// Index fields are pointers so that 0 can be told apart from absent.

type CompleteModuleRequest struct {
	CourseID    string `json:"courseId"`
	ModuleIndex *int   `json:"moduleIndex"`
}

type AssignmentMarkRequest struct {
	CourseID       string   `json:"courseId"`
	MilestoneIndex *int     `json:"milestoneIndex"`
	ModuleIndex    *int     `json:"moduleIndex"`
	Mark           *float64 `json:"mark"`
}

type McqResultRequest struct {
	CourseID      string `json:"courseId"`
	ModuleIndex   *int   `json:"moduleIndex"`
	QuestionIndex *int   `json:"questionIndex"`
	IsCorrect     bool   `json:"isCorrect"`
}

func CompleteModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CompleteModuleRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.CourseID = strings.TrimSpace(reqData.CourseID)
		if reqData.CourseID == "" || reqData.ModuleIndex == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "courseId and moduleIndex are required", nil)
		}

		c.Locals("validatedCompleteModule", reqData)
		return c.Next()
	}
}

func AssignmentMark() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AssignmentMarkRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.CourseID = strings.TrimSpace(reqData.CourseID)
		if reqData.CourseID == "" || reqData.MilestoneIndex == nil || reqData.ModuleIndex == nil || reqData.Mark == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
				"courseId, milestoneIndex, moduleIndex and mark are required", nil)
		}

		c.Locals("validatedAssignmentMark", reqData)
		return c.Next()
	}
}

func SaveMcq() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(McqResultRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.CourseID = strings.TrimSpace(reqData.CourseID)
		if reqData.CourseID == "" || reqData.ModuleIndex == nil || reqData.QuestionIndex == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
				"courseId, moduleIndex and questionIndex are required", nil)
		}

		c.Locals("validatedMcq", reqData)
		return c.Next()
	}
}
