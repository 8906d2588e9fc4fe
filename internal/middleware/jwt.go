package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/schreiber-platform/schreiber-api/internal/utils"
)

// JWTProtected returns a middleware that validates JWT bearer tokens issued
// by the auth service. On success the subject ID, email and normalized role
// are stored in the request locals.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseBearerClaims(c, secret)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		applyClaims(c, claims)

		return c.Next()
	}
}

// parseBearerClaims extracts and verifies the bearer token from the request.
// Signature and expiry are checked against the server secret; only HMAC
// signing methods are accepted.
func parseBearerClaims(c *fiber.Ctx, secret string) (jwt.MapClaims, error) {
	authorization := c.Get("Authorization")
	if authorization == "" {
		return nil, fmt.Errorf("authorization header missing")
	}

	const bearer = "Bearer "
	if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
		return nil, fmt.Errorf("invalid authorization header")
	}

	tokenString := strings.TrimSpace(authorization[len(bearer):])
	if tokenString == "" {
		return nil, fmt.Errorf("invalid token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

func applyClaims(c *fiber.Ctx, claims jwt.MapClaims) {
	if userID := subjectID(claims); userID != nil {
		c.Locals("user_id", *userID)
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		c.Locals("user_email", email)
	}
	if role, ok := claims["role"].(string); ok {
		role = strings.ToLower(strings.TrimSpace(role))
		if role != "" {
			c.Locals("user_role", role)
		}
	}
}

// subjectID reads the token subject, tolerating numeric and string forms.
func subjectID(claims jwt.MapClaims) *uint {
	value, ok := claims["sub"]
	if !ok {
		return nil
	}

	switch v := value.(type) {
	case float64:
		if v < 0 {
			return nil
		}
		id := uint(v)
		return &id
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil
		}
		id := uint(parsed)
		return &id
	default:
		return nil
	}
}
