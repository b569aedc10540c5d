package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SundayYogurt/rolematch/internal/apperr"
	"github.com/SundayYogurt/rolematch/internal/domain"
	"github.com/SundayYogurt/rolematch/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver map[string]*domain.User

func (s stubResolver) Resolve(token string) (*domain.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, apperr.New(apperr.KindUnauthorized, "invalid token")
}

func newAuthApp() *fiber.App {
	resolver := stubResolver{
		"stu": {ID: 1, UserType: domain.UserTypeStudent},
		"ent": {ID: 2, UserType: domain.UserTypeEnterprise},
	}
	app := fiber.New()
	app.Use(AuthMiddleware(resolver))
	app.Get("/student", StudentOnly(), func(c *fiber.Ctx) error {
		u, ok := CurrentUser(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"id": u.ID})
	})
	app.Get("/enterprise", EnterpriseOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	app := newAuthApp()

	assert.Equal(t, fiber.StatusUnauthorized, doGet(t, app, "/student", ""))
	assert.Equal(t, fiber.StatusUnauthorized, doGet(t, app, "/student", "bogus"))
	assert.Equal(t, fiber.StatusOK, doGet(t, app, "/student", "stu"))
	assert.Equal(t, fiber.StatusForbidden, doGet(t, app, "/student", "ent"))
	assert.Equal(t, fiber.StatusOK, doGet(t, app, "/enterprise", "ent"))
	assert.Equal(t, fiber.StatusForbidden, doGet(t, app, "/enterprise", "stu"))
}

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "apply:1:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "apply:1:1")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "apply:1:2")
	assert.True(t, ok)
}

func TestLocalLimiterDisabled(t *testing.T) {
	l := NewLocalLimiter(0, time.Minute)
	for i := 0; i < 10; i++ {
		ok, err := l.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestApplyRateLimit(t *testing.T) {
	build := func(l Limiter) *fiber.App {
		app := fiber.New()
		app.Post("/roles/:roleID/apply", func(c *fiber.Ctx) error {
			c.Locals("userID", uint(7))
			return c.Next()
		}, ApplyRateLimit(l, logger.Discard()), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusCreated)
		})
		return app
	}

	post := func(app *fiber.App, path string) int {
		resp, err := app.Test(httptest.NewRequest("POST", path, nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	app := build(NewLocalLimiter(1, time.Minute))
	assert.Equal(t, fiber.StatusCreated, post(app, "/roles/1/apply"))
	assert.Equal(t, fiber.StatusTooManyRequests, post(app, "/roles/1/apply"))
	assert.Equal(t, fiber.StatusCreated, post(app, "/roles/2/apply"))

	open := build(brokenLimiter{})
	assert.Equal(t, fiber.StatusCreated, post(open, "/roles/1/apply"))
	assert.Equal(t, fiber.StatusCreated, post(open, "/roles/1/apply"))
}
