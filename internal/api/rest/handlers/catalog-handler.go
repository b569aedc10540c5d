package handlers

import (
	"github.com/SundayYogurt/rolematch/internal/api/rest/middleware"
	"github.com/SundayYogurt/rolematch/internal/dto"
	"github.com/SundayYogurt/rolematch/internal/helper/utils"
	"github.com/SundayYogurt/rolematch/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	svc      services.CatalogService
	resolver middleware.SessionResolver
}

func NewCatalogHandler(svc services.CatalogService, resolver middleware.SessionResolver) *CatalogHandler {
	return &CatalogHandler{svc: svc, resolver: resolver}
}

func (h *CatalogHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")
	auth := middleware.AuthMiddleware(h.resolver)

	// Public
	api.Get("/projects", h.ListPublic)
	api.Get("/projects/:projectID", h.Detail)
	api.Get("/projects/:projectID/team", auth, h.Team)

	// Enterprise
	ent := api.Group("/enterprise")
	ent.Get("/projects", auth, middleware.EnterpriseOnly(), h.ListOwn)
	ent.Post("/projects", auth, middleware.EnterpriseOnly(), h.CreateProject)
	ent.Put("/projects/:projectID", auth, middleware.EnterpriseOnly(), h.UpdateProject)
	ent.Get("/projects/:projectID/roles", auth, middleware.EnterpriseOnly(), h.ListRoles)
	ent.Post("/projects/:projectID/roles", auth, middleware.EnterpriseOnly(), h.CreateRole)
	ent.Put("/roles/:roleID", auth, middleware.EnterpriseOnly(), h.UpdateRole)
}

func (h *CatalogHandler) ListPublic(ctx *fiber.Ctx) error {
	projects, err := h.svc.ListPublicProjects(ctx.Query("q"))
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, projects)
}

func (h *CatalogHandler) Detail(ctx *fiber.Ctx) error {
	projectID, ok := paramID(ctx, "projectID")
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid project id")
	}

	detail, err := h.svc.GetProjectDetail(projectID)
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, detail)
}

func (h *CatalogHandler) Team(ctx *fiber.Ctx) error {
	projectID, ok := paramID(ctx, "projectID")
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid project id")
	}
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	team, err := h.svc.Team(projectID, user)
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, team)
}

func (h *CatalogHandler) ListOwn(ctx *fiber.Ctx) error {
	projects, err := h.svc.ListOwnProjects(middleware.CurrentUserID(ctx), ctx.Query("status"))
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, projects)
}

func (h *CatalogHandler) CreateProject(ctx *fiber.Ctx) error {
	var requestBody dto.ProjectCreateRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	project, err := h.svc.CreateProject(user, requestBody)
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, fiber.Map{"project_id": project.ID})
}

func (h *CatalogHandler) UpdateProject(ctx *fiber.Ctx) error {
	projectID, ok := paramID(ctx, "projectID")
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid project id")
	}
	var requestBody dto.ProjectUpdateRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.UpdateProject(projectID, middleware.CurrentUserID(ctx), requestBody); err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"project_id": projectID})
}

func (h *CatalogHandler) ListRoles(ctx *fiber.Ctx) error {
	projectID, ok := paramID(ctx, "projectID")
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid project id")
	}

	roles, err := h.svc.ListRoles(projectID, middleware.CurrentUserID(ctx))
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, roles)
}

func (h *CatalogHandler) CreateRole(ctx *fiber.Ctx) error {
	projectID, ok := paramID(ctx, "projectID")
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid project id")
	}
	var requestBody dto.RoleCreateRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	role, err := h.svc.CreateRole(projectID, middleware.CurrentUserID(ctx), requestBody)
	if err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, fiber.Map{"role_id": role.ID})
}

func (h *CatalogHandler) UpdateRole(ctx *fiber.Ctx) error {
	roleID, ok := paramID(ctx, "roleID")
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid role id")
	}
	var requestBody dto.RoleUpdateRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.UpdateRole(roleID, middleware.CurrentUserID(ctx), requestBody); err != nil {
		return utils.ResponseAppError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"role_id": roleID})
}
