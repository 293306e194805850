package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ranchbox/backend/internal/config"
)

const UserIDKey = "user_id"

// ServiceAuth guards the /api group. The storefront BFF authenticates
// with the shared service key and forwards the acting user in X-User-ID.
func ServiceAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !checkBearer(c, cfg.Server.ServiceAPIKey) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing service key",
			})
		}

		userID, err := uuid.Parse(c.Get("X-User-ID"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or malformed X-User-ID header",
			})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

func checkBearer(c *fiber.Ctx, key string) bool {
	if key == "" {
		return false
	}
	auth := c.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return hmac.Equal([]byte(token), []byte(key))
}

// GetUserID returns the authenticated user id, or uuid.Nil when absent.
func GetUserID(c *fiber.Ctx) uuid.UUID {
	userID, ok := c.Locals(UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// VerifyWebhookSignature checks a hex-encoded HMAC-SHA256 of the raw
// request body against the shared webhook secret.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
