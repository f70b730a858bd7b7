package server

import (
	"strconv"

	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID parses a positive numeric path parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("invalid " + name + " parameter")
	}
	return uint(id), nil
}

// respondServiceError writes a service-layer error with its mapped status.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}
