package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bloglist/internal/bootstrap"
	"bloglist/internal/config"
	"bloglist/internal/models"
	"bloglist/internal/testkit"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	app *fiber.App
	srv *Server
	cfg *config.Config
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

// newTestEnv builds a full server on SQLite and miniredis with root/secret seeded.
func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	db := testkit.NewSQLiteDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Env:          "test",
		Port:         "0",
		JWTSecret:    testSecret,
		SeedRootUser: true,
		RootUsername: "root",
		RootName:     "Superuser",
		RootPassword: "secret",
	}
	for _, m := range mutate {
		m(cfg)
	}
	require.NoError(t, bootstrap.EnsureRootUser(context.Background(), cfg, db))

	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	app := NewFiberApp()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		_ = rdb.Close()
	})
	return &testEnv{app: app, srv: srv, cfg: cfg, db: db, mr: mr}
}

// do sends a JSON request and returns the status and raw body.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (e *testEnv) register(t *testing.T, username, password string) models.UserView {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/users",
		map[string]string{"username": username, "name": username + " name", "password": password}, "")
	require.Equal(t, http.StatusOK, status, string(body))
	var u models.UserView
	require.NoError(t, json.Unmarshal(body, &u))
	return u
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/login",
		map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, status, string(body))
	var l models.LoginView
	require.NoError(t, json.Unmarshal(body, &l))
	require.NotEmpty(t, l.Token)
	return l.Token
}

func (e *testEnv) createBlog(t *testing.T, token string, body map[string]any) models.BlogView {
	t.Helper()
	status, raw := e.do(t, http.MethodPost, "/api/blogs", body, token)
	require.Equal(t, http.StatusCreated, status, string(raw))
	var b models.BlogView
	require.NoError(t, json.Unmarshal(raw, &b))
	return b
}

func (e *testEnv) blogs(t *testing.T) []models.BlogView {
	t.Helper()
	status, raw := e.do(t, http.MethodGet, "/api/blogs", nil, "")
	require.Equal(t, http.StatusOK, status, string(raw))
	var out []models.BlogView
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func (e *testEnv) users(t *testing.T) []models.UserView {
	t.Helper()
	status, raw := e.do(t, http.MethodGet, "/api/users", nil, "")
	require.Equal(t, http.StatusOK, status, string(raw))
	var out []models.UserView
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func decodeError(t *testing.T, raw []byte) models.ErrorResponse {
	t.Helper()
	var e models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return e
}
