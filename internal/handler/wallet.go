package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ranchbox/backend/internal/middleware"
)

func (h *Handler) GetBalance(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	balance, err := h.walletSvc.GetPendingBalance(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load balance",
		})
	}

	return c.JSON(fiber.Map{
		"pending_balance": balance,
	})
}

func (h *Handler) GetWalletTransactions(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	transactions, err := h.walletSvc.GetTransactions(c.Context(), userID, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load transactions",
		})
	}

	return c.JSON(fiber.Map{
		"transactions": transactions,
	})
}
