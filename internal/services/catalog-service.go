package services

import (
	"strings"

	"github.com/SundayYogurt/rolematch/internal/apperr"
	"github.com/SundayYogurt/rolematch/internal/domain"
	"github.com/SundayYogurt/rolematch/internal/dto"
	"github.com/SundayYogurt/rolematch/internal/helper"
	"github.com/SundayYogurt/rolematch/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// CatalogService covers projects and roles. It validates fields and ownership
// only; application state is owned by ApplicationService.
type CatalogService interface {
	FindProject(projectID uint) (*domain.Project, error)
	FindRole(roleID uint) (*domain.Role, error)

	// Enterprise
	ListOwnProjects(enterpriseID uint, status string) ([]dto.ProjectSummary, error)
	CreateProject(enterprise *domain.User, input dto.ProjectCreateRequest) (*domain.Project, error)
	UpdateProject(projectID, enterpriseID uint, input dto.ProjectUpdateRequest) error
	ListRoles(projectID, enterpriseID uint) ([]dto.RoleSummary, error)
	CreateRole(projectID, enterpriseID uint, input dto.RoleCreateRequest) (*domain.Role, error)
	UpdateRole(roleID, enterpriseID uint, input dto.RoleUpdateRequest) error

	// Public
	ListPublicProjects(q string) ([]dto.ProjectSummary, error)
	GetProjectDetail(projectID uint) (*dto.ProjectDetailResponse, error)
	Team(projectID uint, viewer *domain.User) (*dto.TeamResponse, error)
}

type catalogService struct {
	projects repository.ProjectRepository
	roles    repository.RoleRepository
	users    repository.UserRepository
	apps     repository.ApplicationRepository
	log      logrus.FieldLogger
}

func NewCatalogService(
	projects repository.ProjectRepository,
	roles repository.RoleRepository,
	users repository.UserRepository,
	apps repository.ApplicationRepository,
	log logrus.FieldLogger,
) CatalogService {
	return &catalogService{
		projects: projects,
		roles:    roles,
		users:    users,
		apps:     apps,
		log:      log,
	}
}

func (c *catalogService) FindProject(projectID uint) (*domain.Project, error) {
	project, err := c.projects.FindByID(projectID)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, c.internal("find project", err)
	}
	return project, nil
}

func (c *catalogService) FindRole(roleID uint) (*domain.Role, error) {
	role, err := c.roles.FindByID(roleID)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, apperr.NotFound("role not found")
		}
		return nil, c.internal("find role", err)
	}
	return role, nil
}

func (c *catalogService) ownedProject(projectID, enterpriseID uint) (*domain.Project, error) {
	project, err := c.FindProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.PublisherID != enterpriseID {
		return nil, apperr.Forbidden("project belongs to another enterprise")
	}
	return project, nil
}

func (c *catalogService) ListOwnProjects(enterpriseID uint, status string) ([]dto.ProjectSummary, error) {
	var st domain.ProjectStatus
	if strings.TrimSpace(status) != "" {
		parsed, err := domain.ParseProjectStatus(status)
		if err != nil {
			return nil, apperr.Validation("invalid project_status")
		}
		st = parsed
	}

	projects, err := c.projects.ListByPublisher(enterpriseID, st)
	if err != nil {
		return nil, c.internal("list own projects", err)
	}
	return toSummaries(projects), nil
}

func (c *catalogService) CreateProject(enterprise *domain.User, input dto.ProjectCreateRequest) (*domain.Project, error) {
	name := strings.TrimSpace(input.ProjectName)
	if name == "" {
		return nil, apperr.Validation("project_name is required")
	}

	status := domain.ProjectStatusRecruiting
	if strings.TrimSpace(input.ProjectStatus) != "" {
		parsed, err := domain.ParseProjectStatus(input.ProjectStatus)
		if err != nil {
			return nil, apperr.Validation("invalid project_status")
		}
		status = parsed
	}

	company := strings.TrimSpace(input.Company)
	if company == "" {
		company = enterprise.SchoolCompany
	}

	project := &domain.Project{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		PublisherID: enterprise.ID,
		Company:     company,
		Status:      status,
		Deadline:    input.Deadline,
		ResultURL:   strings.TrimSpace(input.ResultURL),
	}
	if err := c.projects.Create(project); err != nil {
		return nil, c.internal("create project", err)
	}

	c.log.WithFields(logrus.Fields{"project_id": project.ID, "publisher_id": enterprise.ID}).Info("project created")
	return project, nil
}

func (c *catalogService) UpdateProject(projectID, enterpriseID uint, input dto.ProjectUpdateRequest) error {
	if _, err := c.ownedProject(projectID, enterpriseID); err != nil {
		return err
	}

	fields := map[string]any{}
	if input.ProjectName != nil {
		name := strings.TrimSpace(*input.ProjectName)
		if name == "" {
			return apperr.Validation("project_name cannot be empty")
		}
		fields["name"] = name
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Company != nil {
		fields["company"] = strings.TrimSpace(*input.Company)
	}
	if input.ProjectStatus != nil {
		st, err := domain.ParseProjectStatus(*input.ProjectStatus)
		if err != nil {
			return apperr.Validation("invalid project_status")
		}
		fields["status"] = st
	}
	if input.Deadline != nil {
		fields["deadline"] = *input.Deadline
	}
	if input.ResultURL != nil {
		fields["result_url"] = strings.TrimSpace(*input.ResultURL)
	}

	if err := c.projects.Update(projectID, fields); err != nil {
		if helper.IsNotFound(err) {
			return apperr.NotFound("project not found")
		}
		return c.internal("update project", err)
	}
	return nil
}

func (c *catalogService) ListRoles(projectID, enterpriseID uint) ([]dto.RoleSummary, error) {
	if _, err := c.ownedProject(projectID, enterpriseID); err != nil {
		return nil, err
	}
	roles, err := c.roles.ListByProject(projectID)
	if err != nil {
		return nil, c.internal("list roles", err)
	}
	return toRoleSummaries(roles), nil
}

func (c *catalogService) CreateRole(projectID, enterpriseID uint, input dto.RoleCreateRequest) (*domain.Role, error) {
	if _, err := c.ownedProject(projectID, enterpriseID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.RoleName)
	if name == "" {
		return nil, apperr.Validation("role_name is required")
	}
	limit := 1
	if input.LimitNum != nil {
		limit = *input.LimitNum
	}
	if limit <= 0 {
		return nil, apperr.Validation("limit_num must be greater than 0")
	}
	status := domain.RoleStatusRecruiting
	if strings.TrimSpace(input.RoleStatus) != "" {
		parsed, err := domain.ParseRoleStatus(input.RoleStatus)
		if err != nil {
			return nil, apperr.Validation("invalid role_status")
		}
		status = parsed
	}

	role := &domain.Role{
		ProjectID:    projectID,
		Name:         name,
		TaskDesc:     strings.TrimSpace(input.TaskDesc),
		SkillTags:    helper.NormalizeTags(input.SkillTags),
		LimitNum:     limit,
		Status:       status,
		TaskDeadline: input.TaskDeadline,
	}
	if err := c.roles.Create(role); err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, apperr.Conflict("role name already exists in this project")
		}
		return nil, c.internal("create role", err)
	}
	return role, nil
}

// UpdateRole never touches join_num; a new limit_num below the seats already
// taken is refused.
func (c *catalogService) UpdateRole(roleID, enterpriseID uint, input dto.RoleUpdateRequest) error {
	role, err := c.FindRole(roleID)
	if err != nil {
		return err
	}
	if _, err := c.ownedProject(role.ProjectID, enterpriseID); err != nil {
		return err
	}

	fields := map[string]any{}
	if input.RoleName != nil {
		name := strings.TrimSpace(*input.RoleName)
		if name == "" {
			return apperr.Validation("role_name cannot be empty")
		}
		fields["name"] = name
	}
	if input.TaskDesc != nil {
		fields["task_desc"] = strings.TrimSpace(*input.TaskDesc)
	}
	if input.SkillTags != nil {
		fields["skill_tags"] = datatypes.JSONSlice[string](helper.NormalizeTags(input.SkillTags))
	}
	if input.LimitNum != nil {
		if *input.LimitNum <= 0 {
			return apperr.Validation("limit_num must be greater than 0")
		}
		if *input.LimitNum < role.JoinNum {
			return apperr.Validation("limit_num cannot be lower than join_num")
		}
		fields["limit_num"] = *input.LimitNum
	}
	if input.RoleStatus != nil {
		st, err := domain.ParseRoleStatus(*input.RoleStatus)
		if err != nil {
			return apperr.Validation("invalid role_status")
		}
		fields["status"] = st
	}
	if input.TaskDeadline != nil {
		fields["task_deadline"] = *input.TaskDeadline
	}

	if err := c.roles.Update(roleID, fields); err != nil {
		switch {
		case helper.IsNotFound(err):
			// the role exists, so the join_num guard refused the new limit
			return apperr.Validation("limit_num cannot be lower than join_num")
		case helper.IsUniqueViolation(err):
			return apperr.Conflict("role name already exists in this project")
		}
		return c.internal("update role", err)
	}
	return nil
}

func (c *catalogService) ListPublicProjects(q string) ([]dto.ProjectSummary, error) {
	projects, err := c.projects.ListPublic(strings.TrimSpace(q))
	if err != nil {
		return nil, c.internal("list projects", err)
	}
	return toSummaries(projects), nil
}

func (c *catalogService) GetProjectDetail(projectID uint) (*dto.ProjectDetailResponse, error) {
	project, err := c.FindProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.Status == domain.ProjectStatusDraft {
		return nil, apperr.NotFound("project not found")
	}

	roles, err := c.roles.ListByProject(projectID)
	if err != nil {
		return nil, c.internal("project detail", err)
	}

	detail := &dto.ProjectDetailResponse{
		ProjectSummary: toSummary(*project),
		PublisherID:    project.PublisherID,
		ResultURL:      project.ResultURL,
		Roles:          toRoleSummaries(roles),
	}
	if publisher, err := c.users.FindUserById(project.PublisherID); err == nil {
		detail.PublisherName = publisher.RealName
	}
	return detail, nil
}

// Team lists accepted members. Only the publishing enterprise and students
// who are themselves members may see it.
func (c *catalogService) Team(projectID uint, viewer *domain.User) (*dto.TeamResponse, error) {
	project, err := c.FindProject(projectID)
	if err != nil {
		return nil, err
	}

	allowed := false
	switch viewer.UserType {
	case domain.UserTypeEnterprise:
		allowed = project.PublisherID == viewer.ID
	case domain.UserTypeStudent:
		allowed, err = c.apps.IsProjectMember(projectID, viewer.ID)
		if err != nil {
			return nil, c.internal("team", err)
		}
	}
	if !allowed {
		return nil, apperr.Forbidden("not a member of this project")
	}

	members, err := c.apps.ListAcceptedByProject(projectID)
	if err != nil {
		return nil, c.internal("team", err)
	}
	return &dto.TeamResponse{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Members:     members,
	}, nil
}

func (c *catalogService) internal(op string, err error) error {
	c.log.WithError(err).WithField("op", op).Error("catalog operation failed")
	return apperr.Wrap(apperr.KindInternal, "internal server error", err)
}

func toSummary(p domain.Project) dto.ProjectSummary {
	return dto.ProjectSummary{
		ProjectID:     p.ID,
		ProjectName:   p.Name,
		Description:   p.Description,
		ProjectStatus: string(p.Status),
		PublishTime:   p.PublishedAt,
		Deadline:      p.Deadline,
		Company:       p.Company,
	}
}

func toSummaries(projects []domain.Project) []dto.ProjectSummary {
	out := make([]dto.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, toSummary(p))
	}
	return out
}

func toRoleSummaries(roles []domain.Role) []dto.RoleSummary {
	out := make([]dto.RoleSummary, 0, len(roles))
	for _, r := range roles {
		tags := []string(r.SkillTags)
		if tags == nil {
			tags = []string{}
		}
		out = append(out, dto.RoleSummary{
			RoleID:       r.ID,
			ProjectID:    r.ProjectID,
			RoleName:     r.Name,
			TaskDesc:     r.TaskDesc,
			SkillTags:    tags,
			LimitNum:     r.LimitNum,
			JoinNum:      r.JoinNum,
			OpenSeats:    r.OpenSeats(),
			RoleStatus:   string(r.Status),
			TaskDeadline: r.TaskDeadline,
		})
	}
	return out
}
