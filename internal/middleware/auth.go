package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/kcluster/internal/logging"
	"github.com/soltixdb/kcluster/internal/models"
)

const (
	// MinAPIKeyLength is the minimum accepted length for a configured API key
	MinAPIKeyLength = 32

	// APIKeyHeader carries the key when the Authorization header is not used
	APIKeyHeader = "X-API-Key"

	codeUnauthorized = "UNAUTHORIZED"
)

// ValidateAPIKey reports whether a configured key is long enough and not blank
func ValidateAPIKey(key string) bool {
	return len(key) >= MinAPIKeyLength && strings.TrimSpace(key) != ""
}

// APIKeyAuth guards the clustering routes. Keys are read from X-API-Key,
// "Authorization: Bearer <key>" or a bare Authorization value.
func APIKeyAuth(logger *logging.Logger, apiKeys []string, enabled bool) fiber.Handler {
	if !enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	accepted := make(map[string]struct{}, len(apiKeys))
	for _, key := range apiKeys {
		if key == "" {
			continue
		}
		if !ValidateAPIKey(key) {
			logger.Warn("Ignoring short API key",
				"key_prefix", maskAPIKey(key),
				"key_length", len(key),
				"min_required", MinAPIKeyLength)
			continue
		}
		accepted[key] = struct{}{}
	}

	if len(accepted) == 0 {
		logger.Error("Authentication enabled without a usable API key; every request will be rejected",
			"configured_keys", len(apiKeys))
	}

	return func(c *fiber.Ctx) error {
		key := extractAPIKey(c)
		if key == "" {
			logger.Warn("API key missing", "method", c.Method(), "path", c.Path(), "ip", c.IP())
			return unauthorized(c, "API key is required. Provide it via X-API-Key header or Authorization header.")
		}

		if _, ok := accepted[key]; !ok {
			logger.Warn("Invalid API key",
				"method", c.Method(),
				"path", c.Path(),
				"ip", c.IP(),
				"key_prefix", maskAPIKey(key))
			return unauthorized(c, "Invalid API key.")
		}

		return c.Next()
	}
}

func extractAPIKey(c *fiber.Ctx) string {
	if key := c.Get(APIKeyHeader); key != "" {
		return key
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return auth
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    codeUnauthorized,
			Message: message,
			Path:    c.Path(),
		},
	})
}

// maskAPIKey keeps the first four characters for logs
func maskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
