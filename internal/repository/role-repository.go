package repository

import (
	"github.com/SundayYogurt/rolematch/internal/domain"
	"gorm.io/gorm"
)

type RoleRepository interface {
	Create(role *domain.Role) error
	FindByID(roleID uint) (*domain.Role, error)
	ListByProject(projectID uint) ([]domain.Role, error)
	Update(roleID uint, fields map[string]any) error
	IsOwnedBy(roleID uint, publisherID uint) (bool, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(role *domain.Role) error {
	return r.db.Create(role).Error
}

func (r *roleRepository) FindByID(roleID uint) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.First(&role, roleID).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) ListByProject(projectID uint) ([]domain.Role, error) {
	var roles []domain.Role
	if err := r.db.Where("project_id = ?", projectID).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Update applies fields to the role. A limit_num change is refused by the
// WHERE clause when it would drop below the seats already taken.
func (r *roleRepository) Update(roleID uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	q := r.db.Model(&domain.Role{}).Where("id = ?", roleID)
	if limit, ok := fields["limit_num"]; ok {
		q = q.Where("join_num <= ?", limit)
	}
	res := q.Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *roleRepository) IsOwnedBy(roleID uint, publisherID uint) (bool, error) {
	var count int64
	err := r.db.
		Table("role").
		Joins("JOIN project ON project.id = role.project_id").
		Where("role.id = ? AND project.publisher_id = ?", roleID, publisherID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
