package handlers

import (
	"github.com/SundayYogurt/rolematch/internal/api/rest/middleware"
	"github.com/SundayYogurt/rolematch/internal/domain"
	"github.com/SundayYogurt/rolematch/internal/dto"
	"github.com/SundayYogurt/rolematch/internal/helper/utils"
	"github.com/SundayYogurt/rolematch/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ApplicationHandler struct {
	svc      services.ApplicationService
	resolver middleware.SessionResolver
	limiter  middleware.Limiter
	log      logrus.FieldLogger
}

func NewApplicationHandler(
	svc services.ApplicationService,
	resolver middleware.SessionResolver,
	limiter middleware.Limiter,
	log logrus.FieldLogger,
) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, resolver: resolver, limiter: limiter, log: log}
}

func (h *ApplicationHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")
	auth := middleware.AuthMiddleware(h.resolver)

	// Student
	api.Post("/roles/:roleID/apply",
		auth,
		middleware.StudentOnly(),
		middleware.ApplyRateLimit(h.limiter, h.log),
		h.Apply,
	)
	api.Get("/student/applications", auth, middleware.StudentOnly(), h.ListMine)
	api.Post("/student/applications/:applicationID/cancel", auth, middleware.StudentOnly(), h.Cancel)

	// Enterprise
	api.Get("/enterprise/roles/:roleID/applications", auth, middleware.EnterpriseOnly(), h.ListForRole)
	api.Post("/enterprise/applications/:applicationID/review", auth, middleware.EnterpriseOnly(), h.Review)
}

func (h *ApplicationHandler) Apply(ctx *fiber.Ctx) error {
	roleID, ok := paramID(ctx, "roleID")
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid role id")
	}

	var requestBody dto.ApplyRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&requestBody); err != nil {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
		}
	}

	id, err := h.svc.Submit(roleID, middleware.CurrentUserID(ctx), requestBody.Motivation)
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, dto.ApplyResponse{ApplicationID: id})
}

func (h *ApplicationHandler) ListMine(ctx *fiber.Ctx) error {
	rows, err := h.svc.ListForStudent(middleware.CurrentUserID(ctx))
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, rows)
}

func (h *ApplicationHandler) Cancel(ctx *fiber.Ctx) error {
	applicationID, ok := paramID(ctx, "applicationID")
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid application id")
	}

	if err := h.svc.Cancel(applicationID, middleware.CurrentUserID(ctx)); err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.ApplyResponse{ApplicationID: applicationID})
}

func (h *ApplicationHandler) ListForRole(ctx *fiber.Ctx) error {
	roleID, ok := paramID(ctx, "roleID")
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid role id")
	}

	rows, err := h.svc.ListForRole(roleID, middleware.CurrentUserID(ctx))
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, rows)
}

func (h *ApplicationHandler) Review(ctx *fiber.Ctx) error {
	applicationID, ok := paramID(ctx, "applicationID")
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid application id")
	}

	var requestBody dto.ReviewRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "decision is required")
	}

	if err := h.svc.Review(applicationID, middleware.CurrentUserID(ctx), requestBody.Decision); err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	decision, _ := domain.ParseReviewDecision(requestBody.Decision)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"application_id": applicationID,
		"status":         decision.Status(),
	})
}
