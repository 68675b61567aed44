package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"bloglist/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_DuplicateUsername(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "yonni", "ylonni")
	before := len(e.users(t))

	status, raw := e.do(t, http.MethodPost, "/api/users",
		map[string]string{"username": "yonni", "name": "Other", "password": "another"}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	resp := decodeError(t, raw)
	assert.Contains(t, resp.Message, "unique")
	assert.Equal(t, models.CodeConflict, resp.Code)
	assert.Len(t, e.users(t), before)
}

func TestCreateUser_Validation(t *testing.T) {
	e := newTestEnv(t)
	before := len(e.users(t))

	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{"short password", map[string]string{"username": "valid", "password": "ab"}, "password length must be at least 3 characters"},
		{"missing password", map[string]string{"username": "valid"}, "password length must be at least 3 characters"},
		{"short username", map[string]string{"username": "ab", "password": "secret"}, "username length must be at least 3 characters"},
		{"missing username", map[string]string{"password": "secret"}, "username is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := e.do(t, http.MethodPost, "/api/users", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.message, decodeError(t, raw).Message)
		})
	}

	assert.Len(t, e.users(t), before)
}

func TestCreateUser_ResponseShape(t *testing.T) {
	e := newTestEnv(t)

	status, raw := e.do(t, http.MethodPost, "/api/users",
		map[string]string{"username": "yonni", "name": "Yonni", "password": "ylonni"}, "")
	require.Equal(t, http.StatusOK, status, string(raw))

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "yonni", body["username"])
	assert.Equal(t, "Yonni", body["name"])
	assert.Equal(t, []any{}, body["blogs"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, body, "password_hash")
}

func TestGetUsers_ListsOwnedBlogs(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t, "root", "secret")
	blog := e.createBlog(t, token, map[string]any{"title": "owned", "author": "Root", "url": "http://owned"})

	var root *models.UserView
	for _, u := range e.users(t) {
		if u.Username == "root" {
			u := u
			root = &u
		}
	}
	require.NotNil(t, root)
	require.Len(t, root.Blogs, 1)
	assert.Equal(t, models.BlogSummaryView{ID: blog.ID, Title: "owned", Author: "Root", URL: "http://owned"}, root.Blogs[0])

	status, raw := e.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", root.ID), nil, "")
	require.Equal(t, http.StatusOK, status)
	var single models.UserView
	require.NoError(t, json.Unmarshal(raw, &single))
	assert.Equal(t, *root, single)
}

func TestGetUser_IDHandling(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.do(t, http.MethodGet, "/api/users/nope", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = e.do(t, http.MethodGet, "/api/users/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)

	status, raw := e.do(t, http.MethodPost, "/api/login", map[string]string{"username": "root", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, status, string(raw))
	var l models.LoginView
	require.NoError(t, json.Unmarshal(raw, &l))
	assert.NotEmpty(t, l.Token)
	assert.Equal(t, "root", l.Username)
	assert.Equal(t, "Superuser", l.Name)
	assert.NotZero(t, l.ID)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"wrong password", map[string]string{"username": "root", "password": "nope"}},
		{"unknown user", map[string]string{"username": "ghost", "password": "secret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := e.do(t, http.MethodPost, "/api/login", tt.body, "")
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "invalid username or password", decodeError(t, raw).Error)
		})
	}
}
