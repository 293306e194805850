package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ranchbox/backend/internal/config"
	"github.com/ranchbox/backend/internal/service"
)

type Handler struct {
	cfg           *config.Config
	userSvc       *service.UserService
	referralSvc   *service.ReferralService
	commissionSvc *service.CommissionService
	walletSvc     *service.WalletService
}

func New(
	cfg *config.Config,
	userSvc *service.UserService,
	referralSvc *service.ReferralService,
	commissionSvc *service.CommissionService,
	walletSvc *service.WalletService,
) *Handler {
	return &Handler{
		cfg:           cfg,
		userSvc:       userSvc,
		referralSvc:   referralSvc,
		commissionSvc: commissionSvc,
		walletSvc:     walletSvc,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
