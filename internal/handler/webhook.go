package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ranchbox/backend/internal/middleware"
	"github.com/ranchbox/backend/internal/repository"
	"github.com/ranchbox/backend/internal/service"
)

// OrderWebhookPayload is the order-completion event delivered by the
// commerce platform. order_total is net of shipping, tax, discounts and
// refunds; it may arrive as a JSON number or string.
type OrderWebhookPayload struct {
	BuyerUserID string          `json:"buyer_user_id"`
	OrderID     string          `json:"order_id"`
	OrderTotal  decimal.Decimal `json:"order_total"`
}

// OrderWebhook handles signed order-completion deliveries. Deliveries are
// retried by the platform, so everything downstream is idempotent; a
// repeat call reports duplicates_skipped instead of double-paying.
func (h *Handler) OrderWebhook(c *fiber.Ctx) error {
	signature := c.Get("X-Webhook-Signature")
	if !middleware.VerifyWebhookSignature(c.Body(), signature, h.cfg.Webhook.Secret) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid webhook signature",
		})
	}

	var payload OrderWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid payload",
		})
	}
	if payload.OrderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "order_id is required",
		})
	}

	buyerID, err := uuid.Parse(payload.BuyerUserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid buyer_user_id",
		})
	}

	summary, err := h.commissionSvc.HandleOrderEvent(c.Context(), buyerID, payload.OrderID, payload.OrderTotal)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBuyerNotFound):
			// The order itself is stored; attribution runs on replay
			// once the buyer's account exists.
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "buyer not found",
			})
		case errors.Is(err, service.ErrInvalidOrderTotal):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			// Non-2xx makes the platform redeliver; the engine is
			// retry-safe.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to process order",
			})
		}
	}

	return c.JSON(summary)
}

type ReplayRequest struct {
	OrderID string `json:"order_id"`
}

// ReplayCommissions re-runs attribution for a stored order. Exposed on
// the internal group for operators and setup-completion jobs.
func (h *Handler) ReplayCommissions(c *fiber.Ctx) error {
	var req ReplayRequest
	if err := c.BodyParser(&req); err != nil || req.OrderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "order_id is required",
		})
	}

	summary, err := h.commissionSvc.ReplayOrder(c.Context(), req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "order not found",
			})
		case errors.Is(err, service.ErrBuyerNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "buyer not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to replay order",
			})
		}
	}

	return c.JSON(summary)
}
