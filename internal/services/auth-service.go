package services

import (
	"strings"
	"time"

	"github.com/SundayYogurt/rolematch/internal/apperr"
	"github.com/SundayYogurt/rolematch/internal/domain"
	"github.com/SundayYogurt/rolematch/internal/dto"
	"github.com/SundayYogurt/rolematch/internal/helper"
	"github.com/SundayYogurt/rolematch/internal/repository"
	"github.com/sirupsen/logrus"
)

var errBadCredentials = apperr.New(apperr.KindUnauthorized, "invalid username or password")

type AuthService interface {
	Register(input dto.RegisterRequest) (*domain.User, error)
	Login(input dto.UserLogin) (*dto.LoginResponse, error)
	Logout(token string) error
	// Resolve maps a bearer token to the active user that owns it.
	Resolve(token string) (*domain.User, error)
	GetProfile(userID uint) (*domain.User, error)
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, log logrus.FieldLogger) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
}

func (a *authService) Register(input dto.RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	realName := strings.TrimSpace(input.RealName)
	schoolCompany := strings.TrimSpace(input.SchoolCompany)
	contact := strings.TrimSpace(input.Contact)
	if contact == "" {
		contact = strings.ToLower(strings.TrimSpace(input.Email))
	}

	if len(username) < 3 {
		return nil, apperr.Validation("username must be at least 3 characters")
	}
	if len(input.Password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}
	userType, err := domain.ParseUserType(input.UserType)
	if err != nil {
		return nil, apperr.Validation("user_type must be student or enterprise")
	}
	if realName == "" || schoolCompany == "" {
		return nil, apperr.Validation("real_name and school_company are required")
	}

	if existing, err := a.users.FindUserByUsername(username); err == nil && existing != nil {
		return nil, apperr.Conflict("username already exists")
	} else if err != nil && !helper.IsNotFound(err) {
		return nil, a.internal("register", err)
	}

	hashed, err := helper.HashPassword(input.Password)
	if err != nil {
		return nil, a.internal("register", err)
	}

	user, err := a.users.CreateUser(&domain.User{
		Username:      username,
		PasswordHash:  hashed,
		UserType:      userType,
		RealName:      realName,
		SchoolCompany: schoolCompany,
		SkillTags:     helper.NormalizeTags(input.SkillTags),
		Contact:       contact,
		Status:        domain.UserStatusActive,
	})
	if err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, apperr.Conflict("username already exists")
		}
		return nil, a.internal("register", err)
	}

	a.log.WithFields(logrus.Fields{"user_id": user.ID, "user_type": user.UserType}).Info("user registered")
	return user, nil
}

func (a *authService) Login(input dto.UserLogin) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = strings.TrimSpace(input.Email)
	}
	if username == "" || input.Password == "" {
		return nil, errBadCredentials
	}

	user, err := a.users.FindUserByUsername(username)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, a.internal("login", err)
	}
	if err := helper.VerifyPassword(input.Password, user.PasswordHash); err != nil {
		return nil, errBadCredentials
	}
	if !user.Active() {
		return nil, apperr.Forbidden("account is disabled")
	}

	token, err := helper.NewSessionToken()
	if err != nil {
		return nil, a.internal("login", err)
	}
	if err := a.sessions.CreateToken(token, user.ID); err != nil {
		return nil, a.internal("login", err)
	}
	if err := a.users.TouchLastLogin(user.ID, a.now()); err != nil {
		a.log.WithError(err).WithField("user_id", user.ID).Warn("failed to stamp last login")
	}

	return &dto.LoginResponse{
		Token:    token,
		UserID:   user.ID,
		UserType: string(user.UserType),
	}, nil
}

func (a *authService) Logout(token string) error {
	if token == "" {
		return nil
	}
	if err := a.sessions.DeleteToken(token); err != nil {
		return a.internal("logout", err)
	}
	return nil
}

func (a *authService) Resolve(token string) (*domain.User, error) {
	if token == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "missing token")
	}
	user, err := a.sessions.FindUserByToken(token)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, apperr.New(apperr.KindUnauthorized, "invalid token")
		}
		return nil, a.internal("resolve session", err)
	}
	if !user.Active() {
		return nil, apperr.Forbidden("account is disabled")
	}
	return user, nil
}

func (a *authService) GetProfile(userID uint) (*domain.User, error) {
	user, err := a.users.FindUserById(userID)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, a.internal("get profile", err)
	}
	return user, nil
}

func (a *authService) internal(op string, err error) error {
	a.log.WithError(err).WithField("op", op).Error("auth operation failed")
	return apperr.Wrap(apperr.KindInternal, "internal server error", err)
}
