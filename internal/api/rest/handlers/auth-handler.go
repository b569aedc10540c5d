package handlers

import (
	"github.com/SundayYogurt/rolematch/internal/api/rest/middleware"
	"github.com/SundayYogurt/rolematch/internal/dto"
	"github.com/SundayYogurt/rolematch/internal/helper"
	"github.com/SundayYogurt/rolematch/internal/helper/utils"
	"github.com/SundayYogurt/rolematch/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) SetupRoutes(app *fiber.App) {
	auth := app.Group("/api/auth")

	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Get("/profile", middleware.AuthMiddleware(h.svc), h.Profile)
}

func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	user, err := h.svc.Register(requestBody)
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, dto.RegisterResponse{
		UserID:   user.ID,
		UserType: string(user.UserType),
	})
}

func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "username and password are required")
	}

	res, err := h.svc.Login(requestBody)
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, res)
}

func (h *AuthHandler) Logout(ctx *fiber.Ctx) error {
	token := helper.BearerToken(ctx.Get(fiber.HeaderAuthorization))
	if err := h.svc.Logout(token); err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "logged out")
}

func (h *AuthHandler) Profile(ctx *fiber.Ctx) error {
	user, err := h.svc.GetProfile(middleware.CurrentUserID(ctx))
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}

	tags := []string(user.SkillTags)
	if tags == nil {
		tags = []string{}
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.UserProfileResponse{
		UserID:        user.ID,
		Username:      user.Username,
		UserType:      string(user.UserType),
		RealName:      user.RealName,
		SchoolCompany: user.SchoolCompany,
		SkillTags:     tags,
		Contact:       user.Contact,
	})
}
