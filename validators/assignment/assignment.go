package assignmentValidator

import (
	"strings"

	"coursemaster/middleware"
	"coursemaster/models"

	"github.com/gofiber/fiber/v2"
)

type SubmitRequest struct {
	CourseID       string `json:"courseId"`
	MilestoneIndex *int   `json:"milestoneIndex"`
	ModuleIndex    *int   `json:"moduleIndex"`
	SubmissionText string `json:"submissionText"`
}

type submissionQuery struct {
	CourseID       string `query:"courseId"`
	MilestoneIndex *int   `query:"milestoneIndex"`
	ModuleIndex    *int   `query:"moduleIndex"`
}

const missingKey = "courseId, milestoneIndex and moduleIndex are required"

func Submit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.CourseID = strings.TrimSpace(reqData.CourseID)
		if reqData.CourseID == "" || reqData.MilestoneIndex == nil || reqData.ModuleIndex == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, missingKey, nil)
		}
		if strings.TrimSpace(reqData.SubmissionText) == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Submission text is required", nil)
		}

		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}

// SubmissionKey reads the module address from the query string.
func SubmissionKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(submissionQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		reqData.CourseID = strings.TrimSpace(reqData.CourseID)
		if reqData.CourseID == "" || reqData.MilestoneIndex == nil || reqData.ModuleIndex == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, missingKey, nil)
		}

		c.Locals("submissionKey", models.SubmissionKey{
			CourseID:       reqData.CourseID,
			MilestoneIndex: *reqData.MilestoneIndex,
			ModuleIndex:    *reqData.ModuleIndex,
		})
		return c.Next()
	}
}
