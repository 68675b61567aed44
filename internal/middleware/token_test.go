package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenExtractor(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Use(TokenExtractor())
	app.Get("/", func(c *fiber.Ctx) error {
		if TokenFrom(c) != TokenFromContext(c.UserContext()) {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(TokenFrom(c))
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"lowercase scheme", "bearer abc.def.ghi", "abc.def.ghi"},
		{"capitalized scheme", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"uppercase scheme", "BEARER abc", "abc"},
		{"missing header", "", ""},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
		{"scheme only", "bearer", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
