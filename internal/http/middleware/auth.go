package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/auth"
	"docvault/internal/metrics"
)

const (
	// UserIDLocalKey holds the authenticated identity ID.
	UserIDLocalKey = "user_id"
	// ClaimsLocalKey holds the verified *auth.Claims.
	ClaimsLocalKey = "claims"
)

// TokenVerifier checks a bearer token. *auth.TokenManager satisfies it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid "Authorization: Bearer <token>" header with
// 401. m may be nil.
func Authenticate(v TokenVerifier, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			m.AuthenticationFailed("missing_token")
			return fiber.NewError(fiber.StatusUnauthorized, "no token, authorization denied")
		}

		claims, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			m.AuthenticationFailed("invalid_token")
			return fiber.NewError(fiber.StatusUnauthorized, "token is not valid")
		}

		c.Locals(UserIDLocalKey, claims.ID)
		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

// UserID returns the identity stored by Authenticate, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}
