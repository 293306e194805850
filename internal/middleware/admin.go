package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ranchbox/backend/internal/config"
)

// AdminAuth guards the /api/admin group with a separate key.
func AdminAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !checkBearer(c, cfg.Server.AdminAPIKey) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}
		return c.Next()
	}
}
