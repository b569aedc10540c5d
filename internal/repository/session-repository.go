package repository

import (
	"github.com/SundayYogurt/rolematch/internal/domain"
	"gorm.io/gorm"
)

type SessionRepository interface {
	CreateToken(token string, userID uint) error
	FindUserByToken(token string) (*domain.User, error)
	DeleteToken(token string) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (s *sessionRepository) CreateToken(token string, userID uint) error {
	return s.db.Create(&domain.AuthToken{Token: token, UserID: userID}).Error
}

func (s *sessionRepository) FindUserByToken(token string) (*domain.User, error) {
	var user domain.User
	err := s.db.
		Model(&domain.User{}).
		Joins(`JOIN auth_tokens ON auth_tokens.user_id = "user".id`).
		Where("auth_tokens.token = ?", token).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *sessionRepository) DeleteToken(token string) error {
	return s.db.Where("token = ?", token).Delete(&domain.AuthToken{}).Error
}
