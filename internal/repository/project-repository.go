package repository

import (
	"github.com/SundayYogurt/rolematch/internal/domain"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(project *domain.Project) error
	FindByID(projectID uint) (*domain.Project, error)
	ListByPublisher(publisherID uint, status domain.ProjectStatus) ([]domain.Project, error)
	ListPublic(q string) ([]domain.Project, error)
	Update(projectID uint, fields map[string]any) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (p *projectRepository) Create(project *domain.Project) error {
	return p.db.Create(project).Error
}

func (p *projectRepository) FindByID(projectID uint) (*domain.Project, error) {
	var project domain.Project
	if err := p.db.First(&project, projectID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (p *projectRepository) ListByPublisher(publisherID uint, status domain.ProjectStatus) ([]domain.Project, error) {
	var projects []domain.Project
	q := p.db.Where("publisher_id = ?", publisherID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("published_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListPublic returns every project that has left draft, optionally filtered by
// a substring of its name, description or company.
func (p *projectRepository) ListPublic(q string) ([]domain.Project, error) {
	var projects []domain.Project
	tx := p.db.Where("status <> ?", domain.ProjectStatusDraft)
	if q != "" {
		like := "%" + q + "%"
		tx = tx.Where("name LIKE ? OR description LIKE ? OR company LIKE ?", like, like, like)
	}
	if err := tx.Order("published_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (p *projectRepository) Update(projectID uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := p.db.Model(&domain.Project{}).Where("id = ?", projectID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
