package middleware_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranchbox/backend/internal/config"
	"github.com/ranchbox/backend/internal/middleware"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"order_id":"ORD-1"}`)
	secret := "whsec_test"

	assert.True(t, middleware.VerifyWebhookSignature(body, sign(body, secret), secret))
	assert.False(t, middleware.VerifyWebhookSignature(body, sign(body, "wrong"), secret))
	assert.False(t, middleware.VerifyWebhookSignature([]byte("tampered"), sign(body, secret), secret))
	assert.False(t, middleware.VerifyWebhookSignature(body, "", secret))

	// An empty secret must never verify anything.
	assert.False(t, middleware.VerifyWebhookSignature(body, sign(body, ""), ""))
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			ServiceAPIKey: "svc_key",
			AdminAPIKey:   "adm_key",
		},
	}
}

func TestServiceAuth(t *testing.T) {
	cfg := testConfig()
	app := fiber.New()
	app.Use(middleware.ServiceAuth(cfg))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(middleware.GetUserID(c).String())
	})

	userID := uuid.New()

	t.Run("valid key and user", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer svc_key")
		req.Header.Set("X-User-ID", userID.String())

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("wrong key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer nope")
		req.Header.Set("X-User-ID", userID.String())

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing user header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer svc_key")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed user header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer svc_key")
		req.Header.Set("X-User-ID", "not-a-uuid")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAdminAuth(t *testing.T) {
	cfg := testConfig()
	app := fiber.New()
	app.Use(middleware.AdminAuth(cfg))
	app.Get("/admin", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	t.Run("admin key accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer adm_key")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("service key rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer svc_key")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestAuthDisabledWhenKeyUnset(t *testing.T) {
	cfg := &config.Config{}
	app := fiber.New()
	app.Use(middleware.ServiceAuth(cfg))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer ")
	req.Header.Set("X-User-ID", uuid.New().String())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "empty configured key must reject all requests")
}
