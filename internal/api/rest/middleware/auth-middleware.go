package middleware

import (
	"github.com/SundayYogurt/rolematch/internal/domain"
	"github.com/SundayYogurt/rolematch/internal/helper"
	"github.com/SundayYogurt/rolematch/internal/helper/utils"
	"github.com/gofiber/fiber/v2"
)

// SessionResolver maps a bearer token to its user.
type SessionResolver interface {
	Resolve(token string) (*domain.User, error)
}

func AuthMiddleware(resolver SessionResolver) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := helper.BearerToken(ctx.Get(fiber.HeaderAuthorization))

		user, err := resolver.Resolve(tokenStr)
		if err != nil {
			return utils.ResponseAppError(ctx, err)
		}

		ctx.Locals("userID", user.ID)
		ctx.Locals("userType", user.UserType)
		ctx.Locals("user", user)
		ctx.Locals("token", tokenStr)
		return ctx.Next()
	}
}

func StudentOnly() fiber.Handler {
	return requireType(domain.UserTypeStudent, "student only")
}

func EnterpriseOnly() fiber.Handler {
	return requireType(domain.UserTypeEnterprise, "enterprise only")
}

func requireType(want domain.UserType, msg string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userType, ok := ctx.Locals("userType").(domain.UserType)
		if !ok {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
		}
		if userType != want {
			return utils.ResponseError(ctx, fiber.StatusForbidden, msg)
		}
		return ctx.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(ctx *fiber.Ctx) (*domain.User, bool) {
	user, ok := ctx.Locals("user").(*domain.User)
	return user, ok && user != nil
}

func CurrentUserID(ctx *fiber.Ctx) uint {
	id, _ := ctx.Locals("userID").(uint)
	return id
}
