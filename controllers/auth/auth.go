package authController

import (
	"coursemaster/middleware"
	"coursemaster/services"
	authValidator "coursemaster/validators/auth"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	auth *services.AuthService
}

func NewHandler(auth *services.AuthService) *Handler {
	return &Handler{auth: auth}
}

func (h *Handler) Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRegister").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	user, token, err := h.auth.Register(c.UserContext(), services.RegisterInput{
		Name:      reqData.Name,
		Email:     reqData.Email,
		Phone:     reqData.Phone,
		Password:  reqData.Password,
		AvatarURL: reqData.AvatarURL,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	middleware.SetTokenCookie(c, token)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully!", fiber.Map{
		"userId": user.ID,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	user, token, err := h.auth.Login(c.UserContext(), reqData.Email, reqData.Password)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	middleware.SetTokenCookie(c, token)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	middleware.ClearTokenCookie(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully!", nil)
}

func (h *Handler) Me(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	user, err := h.auth.Me(c.UserContext(), identity.Email)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully!", user)
}
