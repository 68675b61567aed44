package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const tokenLocal = "token"

// TokenExtractor copies a bearer token from the Authorization header into the request
// locals and context. The token is not verified here; handlers that need an identity
// verify it themselves.
func TokenExtractor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c.Get(fiber.HeaderAuthorization)); token != "" {
			c.Locals(tokenLocal, token)
			c.SetUserContext(context.WithValue(c.UserContext(), TokenKey, token))
		}
		return c.Next()
	}
}

// TokenFrom returns the raw token captured by TokenExtractor, or "".
func TokenFrom(c *fiber.Ctx) string {
	if token, ok := c.Locals(tokenLocal).(string); ok {
		return token
	}
	return ""
}

// TokenFromContext returns the raw token carried in ctx, or "".
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(TokenKey).(string); ok {
		return token
	}
	return ""
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
