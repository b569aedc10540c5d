package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// paramID reads a positive integer path parameter.
func paramID(ctx *fiber.Ctx, name string) (uint, bool) {
	id, err := ctx.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
