package courseValidator

import (
	"encoding/json"
	"strings"

	"coursemaster/middleware"
	"coursemaster/models"

	"github.com/gofiber/fiber/v2"
)

type CreateCourseRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Instructor  string             `json:"instructor"`
	Price       float64            `json:"price"`
	Category    string             `json:"category"`
	RawTags     json.RawMessage    `json:"tags"`
	Tags        []string           `json:"-"`
	Image       string             `json:"image"`
	Syllabus    string             `json:"syllabus"`
	Milestones  []models.Milestone `json:"milestones"`
}

// CreateCourse only checks the request shape; the course structure itself is
// validated when the course is created.
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if len(reqData.RawTags) > 0 && string(reqData.RawTags) != "null" {
			if err := json.Unmarshal(reqData.RawTags, &reqData.Tags); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Tags must be an array", nil)
			}
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

type CourseListRequest struct {
	Page     *int   `query:"page"`
	Limit    *int   `query:"limit"`
	Search   string `query:"search"`
	Sort     string `query:"sort"`
	Category string `query:"category"`
	Tags     string `query:"tags"`
}

// CourseList builds the catalog query from the query string.
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseListRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		// Validate Page
		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}

		// Validate Limit
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		query := models.CourseQuery{
			Search:   strings.TrimSpace(reqData.Search),
			Category: strings.TrimSpace(reqData.Category),
		}
		if reqData.Page != nil {
			query.Page = *reqData.Page
		}
		if reqData.Limit != nil {
			query.Limit = *reqData.Limit
		}
		switch models.CourseSort(reqData.Sort) {
		case models.SortPriceAsc, models.SortPriceDesc:
			query.Sort = models.CourseSort(reqData.Sort)
		}
		for _, tag := range strings.Split(reqData.Tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				query.Tags = append(query.Tags, tag)
			}
		}

		c.Locals("validatedCourseList", query)
		return c.Next()
	}
}

// CourseID requires a non-empty :id parameter.
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID := strings.TrimSpace(middleware.PathParam(c, "id"))
		if courseID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}
