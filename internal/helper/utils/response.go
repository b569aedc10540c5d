package utils

import (
	"github.com/SundayYogurt/rolematch/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

func ResponseError(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// create a generic response function for success
func ResponseSuccess(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(fiber.Map{"data": data})
}

// ResponseAppError writes err with the status for its kind. Internal faults
// are reported without detail.
func ResponseAppError(ctx *fiber.Ctx, err error) error {
	return ResponseError(ctx, StatusFor(apperr.KindOf(err)), apperr.Message(err))
}

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindInvalidState, apperr.KindConflict, apperr.KindFull, apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindRateLimited:
		return fiber.StatusTooManyRequests
	}
	return fiber.StatusInternalServerError
}
