package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/ranchbox/backend/internal/config"
	"github.com/ranchbox/backend/internal/handler"
	"github.com/ranchbox/backend/internal/logging"
	"github.com/ranchbox/backend/internal/middleware"
	"github.com/ranchbox/backend/internal/repository"
	"github.com/ranchbox/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logging.New(cfg.Server.IsProduction())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	// Connect to database
	repo, err := repository.New(cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()

	// Create services
	userSvc := service.NewUserService(repo)
	referralSvc := service.NewReferralService(repo, cfg)
	commissionSvc := service.NewCommissionService(repo, zlog)
	walletSvc := service.NewWalletService(repo)
	adminSvc := service.NewAdminService(repo)

	// Create handlers
	h := handler.New(cfg, userSvc, referralSvc, commissionSvc, walletSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, userSvc, commissionSvc)

	app := newApp(cfg, h, adminHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		_ = app.Shutdown()
	}()

	// Start server
	zlog.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

// newApp builds the Fiber app and registers every route.
func newApp(cfg *config.Config, h *handler.Handler, adminHandler *handler.AdminHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID",
	}))

	// Health check
	app.Get("/health", h.Health)
	app.Get("/internal/health", h.Health)

	// Webhooks (signature-verified, no bearer auth) - order completion events
	app.Post("/webhook/orders", h.OrderWebhook)

	// API routes for the storefront BFF
	api := app.Group("/api", middleware.ServiceAuth(cfg))

	// Users
	api.Post("/users", h.CreateUser)
	api.Get("/user/me", h.GetMe)

	// Referrals
	api.Get("/referral/stats", h.GetReferralStats)
	api.Get("/referral/link", h.GetReferralLink)
	api.Post("/referral/apply", h.ApplyReferralCode)
	api.Get("/referral/users", h.GetReferredUsers)

	// Commissions and wallet
	api.Get("/commissions", h.GetMyCommissions)
	api.Get("/wallet", h.GetBalance)
	api.Get("/wallet/transactions", h.GetWalletTransactions)

	// Admin panel routes
	admin := app.Group("/api/admin", middleware.AdminAuth(cfg))
	admin.Get("/commissions", adminHandler.ListCommissions)
	admin.Get("/orders/:order_id/commissions", adminHandler.GetOrderCommissions)
	admin.Post("/commissions/:commission_id/status", adminHandler.TransitionCommission)
	admin.Get("/tiers", adminHandler.GetTierRates)
	admin.Post("/tiers", adminHandler.SetTierRate)
	admin.Post("/users/:user_id/rate", adminHandler.SetUserRate)
	admin.Post("/users/:user_id/override", adminHandler.SetUserOverride)
	admin.Get("/settings", adminHandler.GetSettings)

	// Internal endpoints (operators, setup-completion jobs). Mutating and
	// payee-revealing, so they sit behind the admin key.
	internal := app.Group("/internal", middleware.AdminAuth(cfg))
	internal.Post("/commissions/replay", h.ReplayCommissions)

	return app
}
