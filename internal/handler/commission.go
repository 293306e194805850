package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ranchbox/backend/internal/middleware"
)

// GetMyCommissions lists the authenticated user's commissions as payee.
func (h *Handler) GetMyCommissions(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	commissions, err := h.commissionSvc.GetCommissionsByPayee(c.Context(), userID, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load commissions",
		})
	}

	return c.JSON(fiber.Map{
		"commissions": commissions,
	})
}
