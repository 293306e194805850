package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ranchbox/backend/internal/middleware"
	"github.com/ranchbox/backend/internal/repository"
)

type ApplyReferralRequest struct {
	Code string `json:"code"`
}

func (h *Handler) GetReferralStats(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	stats, err := h.referralSvc.GetReferralStats(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load referral stats",
		})
	}

	return c.JSON(stats)
}

func (h *Handler) GetReferralLink(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	link, code, err := h.referralSvc.GetReferralLink(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build referral link",
		})
	}

	return c.JSON(fiber.Map{
		"link": link,
		"code": code,
	})
}

func (h *Handler) ApplyReferralCode(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req ApplyReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "code is required",
		})
	}

	if err := h.referralSvc.ApplyReferralCode(c.Context(), userID, req.Code); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown referral code",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (h *Handler) GetReferredUsers(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	users, err := h.referralSvc.GetReferredUsers(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load referred users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
	})
}
