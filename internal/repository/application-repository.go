package repository

import (
	"errors"
	"time"

	"github.com/SundayYogurt/rolematch/internal/domain"
	"github.com/SundayYogurt/rolematch/internal/dto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoSeat is returned by TakeSeat when the role is already at capacity.
var ErrNoSeat = errors.New("no seat left on role")

// ApplicationTx is the transactional view used by the application state
// machine. Everything done through one ApplicationTx commits or rolls back
// together.
type ApplicationTx interface {
	// LockSeat locks the role's project and then the role itself, in that
	// order, and returns their current state.
	LockSeat(roleID uint) (*domain.Project, *domain.Role, error)
	FindApplication(applicationID uint) (*domain.RoleApplication, error)
	LockApplication(applicationID uint) (*domain.RoleApplication, error)
	FindByRoleAndStudent(roleID, studentID uint) (*domain.RoleApplication, error)
	HasAcceptedInProject(projectID, studentID uint) (bool, error)
	Create(app *domain.RoleApplication) error
	Reopen(applicationID uint, motivation string, at time.Time) error
	// Transition moves an application from -> to and reports whether a row
	// in the from state was found.
	Transition(applicationID uint, from, to domain.ApplicationStatus, at time.Time) (bool, error)
	// TakeSeat increments join_num, flipping the role to completed once it
	// reaches limit_num.
	TakeSeat(roleID uint) (*domain.Role, error)
}

type ApplicationRepository interface {
	WithinTx(fn func(tx ApplicationTx) error) error
	CancelPending(applicationID, studentID uint, at time.Time) (bool, error)
	FindByID(applicationID uint) (*domain.RoleApplication, error)
	ListByStudent(studentID uint) ([]dto.StudentApplicationRow, error)
	ListByRole(roleID uint) ([]dto.RoleApplicantRow, error)
	ListAcceptedByProject(projectID uint) ([]dto.TeamMemberRow, error)
	IsProjectMember(projectID, studentID uint) (bool, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (a *applicationRepository) WithinTx(fn func(tx ApplicationTx) error) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		return fn(&applicationTx{tx: tx})
	})
}

// CancelPending is a single conditional update so that it cannot overwrite a
// concurrent review.
func (a *applicationRepository) CancelPending(applicationID, studentID uint, at time.Time) (bool, error) {
	res := a.db.Model(&domain.RoleApplication{}).
		Where("id = ? AND student_id = ? AND status = ?", applicationID, studentID, domain.ApplicationStatusPending).
		Updates(map[string]any{
			"status":     domain.ApplicationStatusCancelled,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (a *applicationRepository) FindByID(applicationID uint) (*domain.RoleApplication, error) {
	var app domain.RoleApplication
	if err := a.db.First(&app, applicationID).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (a *applicationRepository) ListByStudent(studentID uint) ([]dto.StudentApplicationRow, error) {
	rows := []dto.StudentApplicationRow{}
	err := a.db.
		Table("role_application AS ra").
		Select(`ra.id AS application_id, ra.status, ra.motivation, ra.applied_at AS apply_time,
			ra.updated_at AS update_time, r.id AS role_id, r.name AS role_name,
			p.id AS project_id, p.name AS project_name, p.company`).
		Joins("JOIN role r ON r.id = ra.role_id").
		Joins("JOIN project p ON p.id = ra.project_id").
		Where("ra.student_id = ?", studentID).
		Order("ra.applied_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *applicationRepository) ListByRole(roleID uint) ([]dto.RoleApplicantRow, error) {
	rows := []dto.RoleApplicantRow{}
	err := a.db.
		Table("role_application AS ra").
		Select(`ra.id AS application_id, ra.status, ra.motivation, ra.applied_at AS apply_time,
			ra.updated_at AS update_time, u.id AS student_id, u.username AS student_name, u.real_name`).
		Joins(`JOIN "user" u ON u.id = ra.student_id`).
		Where("ra.role_id = ?", roleID).
		Order("ra.applied_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *applicationRepository) ListAcceptedByProject(projectID uint) ([]dto.TeamMemberRow, error) {
	rows := []dto.TeamMemberRow{}
	err := a.db.
		Table("role_application AS ra").
		Select(`ra.id AS application_id, u.id AS student_id, u.username AS student_name, u.real_name,
			r.id AS role_id, r.name AS role_name, ra.updated_at AS joined_at`).
		Joins(`JOIN "user" u ON u.id = ra.student_id`).
		Joins("JOIN role r ON r.id = ra.role_id").
		Where("ra.project_id = ? AND ra.status = ?", projectID, domain.ApplicationStatusAccepted).
		Order("r.name ASC, ra.updated_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *applicationRepository) IsProjectMember(projectID, studentID uint) (bool, error) {
	return hasAccepted(a.db, projectID, studentID)
}

type applicationTx struct {
	tx *gorm.DB
}

func (t *applicationTx) LockSeat(roleID uint) (*domain.Project, *domain.Role, error) {
	var ref domain.Role
	if err := t.tx.Select("id", "project_id").First(&ref, roleID).Error; err != nil {
		return nil, nil, err
	}

	var project domain.Project
	if err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&project, ref.ProjectID).Error; err != nil {
		return nil, nil, err
	}

	var role domain.Role
	if err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&role, roleID).Error; err != nil {
		return nil, nil, err
	}
	return &project, &role, nil
}

func (t *applicationTx) FindApplication(applicationID uint) (*domain.RoleApplication, error) {
	var app domain.RoleApplication
	if err := t.tx.First(&app, applicationID).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (t *applicationTx) LockApplication(applicationID uint) (*domain.RoleApplication, error) {
	var app domain.RoleApplication
	if err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&app, applicationID).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (t *applicationTx) FindByRoleAndStudent(roleID, studentID uint) (*domain.RoleApplication, error) {
	var app domain.RoleApplication
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("role_id = ? AND student_id = ?", roleID, studentID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (t *applicationTx) HasAcceptedInProject(projectID, studentID uint) (bool, error) {
	return hasAccepted(t.tx, projectID, studentID)
}

func (t *applicationTx) Create(app *domain.RoleApplication) error {
	return t.tx.Omit(clause.Associations).Create(app).Error
}

func (t *applicationTx) Reopen(applicationID uint, motivation string, at time.Time) error {
	res := t.tx.Model(&domain.RoleApplication{}).
		Where("id = ? AND status IN ?", applicationID, []domain.ApplicationStatus{
			domain.ApplicationStatusRejected,
			domain.ApplicationStatusCancelled,
		}).
		Updates(map[string]any{
			"motivation": motivation,
			"status":     domain.ApplicationStatusPending,
			"updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *applicationTx) Transition(applicationID uint, from, to domain.ApplicationStatus, at time.Time) (bool, error) {
	res := t.tx.Model(&domain.RoleApplication{}).
		Where("id = ? AND status = ?", applicationID, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (t *applicationTx) TakeSeat(roleID uint) (*domain.Role, error) {
	res := t.tx.Model(&domain.Role{}).
		Where("id = ? AND join_num < limit_num", roleID).
		UpdateColumn("join_num", gorm.Expr("join_num + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoSeat
	}

	var role domain.Role
	if err := t.tx.First(&role, roleID).Error; err != nil {
		return nil, err
	}
	if role.JoinNum >= role.LimitNum && role.Status != domain.RoleStatusCompleted {
		if err := t.tx.Model(&domain.Role{}).
			Where("id = ?", roleID).
			UpdateColumn("status", domain.RoleStatusCompleted).Error; err != nil {
			return nil, err
		}
		role.Status = domain.RoleStatusCompleted
	}
	return &role, nil
}

func hasAccepted(db *gorm.DB, projectID, studentID uint) (bool, error) {
	var count int64
	err := db.Model(&domain.RoleApplication{}).
		Where("project_id = ? AND student_id = ? AND status = ?", projectID, studentID, domain.ApplicationStatusAccepted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
