package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/schreiber-platform/schreiber-api/internal/utils"
)

// MediaGuard protects the media library listing. An admin JWT passes, and so
// does the static service token used by the content-sync job, sent as the
// raw Authorization header value.
func MediaGuard(secret, serviceToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if serviceToken != "" && subtle.ConstantTimeCompare([]byte(authorization), []byte(serviceToken)) == 1 {
			c.Locals("service_client", true)
			return c.Next()
		}

		claims, err := parseBearerClaims(c, secret)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		applyClaims(c, claims)

		if normalizeRoleValue(c.Locals("user_role")) != AuthRoleAdmin {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		return c.Next()
	}
}
