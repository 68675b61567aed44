package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bloglist/internal/cache"
	"bloglist/internal/config"
	"bloglist/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecks(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, status)

	status, raw := e.do(t, http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusOK, status, string(raw))
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"])
	assert.Equal(t, "healthy", body.Checks["redis"])

	e.mr.Close()
	status, _ = e.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestUnknownEndpoint(t *testing.T) {
	e := newTestEnv(t)

	status, raw := e.do(t, http.MethodGet, "/api/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "unknown endpoint", decodeError(t, raw).Error)
}

func TestTestingReset(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "secret")
	e.createBlog(t, token, map[string]any{"title": "doomed"})
	require.Len(t, e.blogs(t), 1)
	require.True(t, e.mr.Exists(cache.BlogListKey))

	status, _ := e.do(t, http.MethodPost, "/api/testing/reset", nil, "")
	assert.Equal(t, http.StatusNoContent, status)

	assert.False(t, e.mr.Exists(cache.BlogListKey))
	assert.Empty(t, e.blogs(t))
	assert.Empty(t, e.users(t))
}

func TestTestingReset_NotRoutedOutsideTest(t *testing.T) {
	e := newTestEnv(t, func(c *config.Config) { c.Env = "development" })

	status, _ := e.do(t, http.MethodPost, "/api/testing/reset", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Len(t, e.users(t), 1)
}

func TestBlogCacheInvalidatedOnWrite(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "secret")
	e.createBlog(t, token, map[string]any{"title": "first"})

	require.Len(t, e.blogs(t), 1)
	require.True(t, e.mr.Exists(cache.BlogListKey))

	e.createBlog(t, token, map[string]any{"title": "second"})
	assert.Len(t, e.blogs(t), 2)
}

func TestErrorHandler(t *testing.T) {
	app := NewFiberApp()
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/app-error", func(c *fiber.Ctx) error {
		return models.NewNotFoundError("Blog", 7)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	_ = resp.Body.Close()
	assert.Equal(t, "short and stout", body.Error)
	assert.Equal(t, models.CodeValidation, body.Code)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/app-error", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSignupRateLimit_FollowsConfiguredEnv(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	e := newTestEnv(t, func(c *config.Config) { c.Env = "production" })

	for i := 0; i < 5; i++ {
		body := map[string]string{"username": fmt.Sprintf("user%d", i), "password": "secret"}
		status, raw := e.do(t, http.MethodPost, "/api/users", body, "")
		require.Equal(t, http.StatusOK, status, string(raw))
	}
	status, _ := e.do(t, http.MethodPost, "/api/users", map[string]string{"username": "user5", "password": "secret"}, "")
	assert.Equal(t, http.StatusTooManyRequests, status)
	var limited []string
	for _, k := range e.mr.Keys() {
		if strings.HasPrefix(k, "rl:signup:") {
			limited = append(limited, k)
		}
	}
	assert.Len(t, limited, 1)
}
