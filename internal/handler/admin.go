package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ranchbox/backend/internal/model"
	"github.com/ranchbox/backend/internal/repository"
	"github.com/ranchbox/backend/internal/service"
)

type AdminHandler struct {
	adminSvc      *service.AdminService
	userSvc       *service.UserService
	commissionSvc *service.CommissionService
}

func NewAdminHandler(adminSvc *service.AdminService, userSvc *service.UserService, commissionSvc *service.CommissionService) *AdminHandler {
	return &AdminHandler{
		adminSvc:      adminSvc,
		userSvc:       userSvc,
		commissionSvc: commissionSvc,
	}
}

// ListCommissions returns commissions across all payees. Accepts
// ?status=pending|approved|paid|rejected, ?limit=, ?offset=.
func (h *AdminHandler) ListCommissions(c *fiber.Ctx) error {
	var status *model.CommissionStatus
	if raw := c.Query("status"); raw != "" {
		s := model.CommissionStatus(raw)
		if !s.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown status",
			})
		}
		status = &s
	}

	commissions, err := h.adminSvc.ListCommissions(c.Context(), status, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list commissions",
		})
	}

	return c.JSON(fiber.Map{
		"commissions": commissions,
	})
}

func (h *AdminHandler) GetOrderCommissions(c *fiber.Ctx) error {
	orderID := c.Params("order_id")

	commissions, err := h.adminSvc.GetCommissionsByOrder(c.Context(), orderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load commissions",
		})
	}

	return c.JSON(fiber.Map{
		"commissions": commissions,
	})
}

type TransitionRequest struct {
	Status model.CommissionStatus `json:"status"`
}

// TransitionCommission is the payout process' entry point into the
// status machine: pending→approved|rejected, approved→paid|rejected.
func (h *AdminHandler) TransitionCommission(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("commission_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid commission id",
		})
	}

	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	commission, err := h.commissionSvc.TransitionStatus(c.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCommissionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "commission not found",
			})
		case errors.Is(err, service.ErrInvalidTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update commission",
			})
		}
	}

	return c.JSON(commission)
}

func (h *AdminHandler) GetTierRates(c *fiber.Ctx) error {
	tiers := h.commissionSvc.TierTable(c.Context())

	out := make(map[string]decimal.Decimal, len(tiers))
	for level, pct := range tiers {
		out[strconv.Itoa(level)] = pct
	}
	return c.JSON(fiber.Map{
		"tiers": out,
	})
}

type SetTierRateRequest struct {
	Level   int             `json:"level"`
	Percent decimal.Decimal `json:"percent"`
}

func (h *AdminHandler) SetTierRate(c *fiber.Ctx) error {
	var req SetTierRateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.commissionSvc.SetTierPercent(c.Context(), req.Level, req.Percent); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

type SetRateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

// SetUserRate changes a user's base multiplier. Applies to commissions
// calculated from now on; historical records keep their applied rate.
func (h *AdminHandler) SetUserRate(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	var req SetRateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.userSvc.SetCommissionRate(c.Context(), userID, req.Rate); err != nil {
		return adminUserError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

type SetOverrideRequest struct {
	Override *decimal.Decimal `json:"override"` // null clears the override
}

func (h *AdminHandler) SetUserOverride(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	var req SetOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.userSvc.SetCommissionOverride(c.Context(), userID, req.Override); err != nil {
		return adminUserError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.adminSvc.GetSettings(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load settings",
		})
	}
	return c.JSON(settings)
}

func adminUserError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "user not found",
		})
	case errors.Is(err, service.ErrInvalidRate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update user",
		})
	}
}
