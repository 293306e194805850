package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ranchbox/backend/internal/middleware"
	"github.com/ranchbox/backend/internal/model"
	"github.com/ranchbox/backend/internal/repository"
)

type CreateUserRequest struct {
	Email        *string `json:"email,omitempty"`
	ReferralCode *string `json:"referral_code,omitempty"`
}

// CreateUser registers a participant, optionally linking them under the
// owner of referral_code in the same call.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	// Resolve the code before creating anything: a bad code must fail
	// the whole request, not leave an unlinked account behind.
	var referrer *model.User
	if req.ReferralCode != nil && *req.ReferralCode != "" {
		var err error
		referrer, err = h.userSvc.GetUserByReferralCode(c.Context(), *req.ReferralCode)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "unknown referral code",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to look up referral code",
			})
		}
	}

	user, err := h.userSvc.CreateUser(c.Context(), req.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create user",
		})
	}

	if referrer != nil {
		if err := h.referralSvc.Link(c.Context(), user.ID, referrer.ID); err != nil {
			// The account exists either way; report it together with
			// the link failure instead of discarding it.
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"user":           user,
				"referral_error": err.Error(),
			})
		}
		// Re-read so the response carries the referrer link.
		user, err = h.userSvc.GetUser(c.Context(), user.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load user",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	user, err := h.userSvc.GetUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load user",
		})
	}

	return c.JSON(user)
}
