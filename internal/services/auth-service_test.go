package services

import (
	"testing"
	"time"

	"github.com/SundayYogurt/rolematch/internal/apperr"
	"github.com/SundayYogurt/rolematch/internal/domain"
	"github.com/SundayYogurt/rolematch/internal/dto"
	"github.com/SundayYogurt/rolematch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*fakeStore, *authService) {
	store := newFakeStore()
	svc := NewAuthService(fakeUsers{store}, fakeSessions{store}, logger.Discard()).(*authService)
	svc.now = func() time.Time { return fixedNow }
	return store, svc
}

func validRegister() dto.RegisterRequest {
	return dto.RegisterRequest{
		Username:      "alice",
		Password:      "secret123",
		UserType:      "Student",
		RealName:      "Alice Liddell",
		SchoolCompany: "Wonder U",
		SkillTags:     []string{"go", " Go", "sql"},
		Email:         "Alice@Example.com",
	}
}

func TestRegister(t *testing.T) {
	_, svc := newAuthFixture()

	user, err := svc.Register(validRegister())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, domain.UserTypeStudent, user.UserType)
	assert.Equal(t, []string{"go", "sql"}, []string(user.SkillTags))
	assert.Equal(t, "alice@example.com", user.Contact)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	_, err = svc.Register(validRegister())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *dto.RegisterRequest)
	}{
		{"short username", func(r *dto.RegisterRequest) { r.Username = "al" }},
		{"short password", func(r *dto.RegisterRequest) { r.Password = "12345" }},
		{"unknown type", func(r *dto.RegisterRequest) { r.UserType = "admin" }},
		{"missing real name", func(r *dto.RegisterRequest) { r.RealName = " " }},
		{"missing school", func(r *dto.RegisterRequest) { r.SchoolCompany = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newAuthFixture()
			req := validRegister()
			tt.mutate(&req)
			_, err := svc.Register(req)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestLoginResolveLogout(t *testing.T) {
	store, svc := newAuthFixture()
	user, err := svc.Register(validRegister())
	require.NoError(t, err)

	res, err := svc.Login(dto.UserLogin{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.UserID)
	assert.Equal(t, "student", res.UserType)
	assert.NotEmpty(t, res.Token)

	stored, _ := fakeUsers{store}.FindUserById(user.ID)
	require.NotNil(t, stored.LastLogin)
	assert.Equal(t, fixedNow, *stored.LastLogin)

	resolved, err := svc.Resolve(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	require.NoError(t, svc.Logout(res.Token))
	_, err = svc.Resolve(res.Token)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestLoginFailures(t *testing.T) {
	store, svc := newAuthFixture()
	user, err := svc.Register(validRegister())
	require.NoError(t, err)

	_, err = svc.Login(dto.UserLogin{Username: "alice", Password: "wrong-pass"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.Login(dto.UserLogin{Username: "nobody", Password: "secret123"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	store.mu.Lock()
	u := store.users[user.ID]
	u.Status = domain.UserStatusDisabled
	store.users[user.ID] = u
	store.mu.Unlock()

	_, err = svc.Login(dto.UserLogin{Username: "alice", Password: "secret123"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestResolveRejectsUnknownToken(t *testing.T) {
	_, svc := newAuthFixture()

	_, err := svc.Resolve("")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = svc.Resolve("nope")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.NoError(t, svc.Logout(""))
}
