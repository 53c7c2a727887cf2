package userController

import (
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/services"
	userValidator "coursemaster/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	users *services.UserService
}

func NewHandler(users *services.UserService) *Handler {
	return &Handler{users: users}
}

// UpdateProfile edits the caller's own profile; RequireSelf guards the route.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	user, err := h.users.UpdateProfile(c.UserContext(), middleware.PathParam(c, "email"), models.ProfileUpdate{
		Name:   reqData.Name,
		Phone:  reqData.Phone,
		Avatar: reqData.AvatarURL,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", user)
}

func (h *Handler) IsAdmin(c *fiber.Ctx) error {
	isAdmin, err := h.users.IsAdmin(c.UserContext(), middleware.PathParam(c, "email"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Admin status fetched!", fiber.Map{
		"isAdmin": isAdmin,
	})
}
