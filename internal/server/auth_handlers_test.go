package server

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(http.MethodPost, "/api/auth/register", map[string]any{
		"username":  "alice",
		"email":     "alice@example.com",
		"password":  "secret123",
		"full_name": "Alice Liddell",
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "User created successfully", body["message"])
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")
	profile := user["profile"].(map[string]any)
	assert.Equal(t, "Alice Liddell", profile["full_name"])
	assert.Equal(t, "light", profile["theme_preference"])
}

func TestRegister_Conflicts(t *testing.T) {
	e := newTestEnv(t)
	e.register("alice")

	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{
			name:    "duplicate username",
			body:    map[string]any{"username": "alice", "email": "other@example.com", "password": "secret123"},
			message: "Username already taken. Please choose a different username or login if this is your account.",
		},
		{
			name:    "duplicate email",
			body:    map[string]any{"username": "alice2", "email": "alice@example.com", "password": "secret123"},
			message: "Email already registered. Please use a different email or login if this is your account.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := e.do(http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
			assert.Equal(t, tt.message, body["error"])
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"missing username", map[string]any{"email": "a@example.com", "password": "secret123"}, "username is required"},
		{"missing email", map[string]any{"username": "alice", "password": "secret123"}, "email is required"},
		{"missing password", map[string]any{"username": "alice", "email": "a@example.com"}, "password is required"},
		{"bad username", map[string]any{"username": "al ice", "email": "a@example.com", "password": "secret123"}, ""},
		{"short username", map[string]any{"username": "al", "email": "a@example.com", "password": "secret123"}, ""},
		{"bad email", map[string]any{"username": "alice", "email": "not-an-email", "password": "secret123"}, ""},
		{"short password", map[string]any{"username": "alice", "email": "a@example.com", "password": "123"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := e.do(http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
			}
		})
	}
}

func TestRegister_MalformedBody(t *testing.T) {
	e := newTestEnv(t)

	req := jsonRequest(http.MethodPost, "/api/auth/register", "{not json")
	resp, body := e.send(req, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	e.register("alice")

	t.Run("by username", func(t *testing.T) {
		resp, body := e.do(http.MethodPost, "/api/auth/login", map[string]any{
			"username": "alice", "password": "secret123",
		}, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
		assert.Equal(t, "Login successful", body["message"])
		assert.NotEmpty(t, body["token"])
		assert.NotNil(t, body["user"].(map[string]any)["last_seen"])
	})

	t.Run("by email", func(t *testing.T) {
		resp, _ := e.do(http.MethodPost, "/api/auth/login", map[string]any{
			"username": "alice@example.com", "password": "secret123",
		}, "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, body := e.do(http.MethodPost, "/api/auth/login", map[string]any{
			"username": "alice", "password": "wrong-password",
		}, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid username or password", body["error"])
	})

	t.Run("unknown user", func(t *testing.T) {
		resp, _ := e.do(http.MethodPost, "/api/auth/login", map[string]any{
			"username": "nobody", "password": "secret123",
		}, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, body := e.do(http.MethodPost, "/api/auth/login", map[string]any{"username": "alice"}, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Username and password are required", body["error"])
	})
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	e := newTestEnv(t)
	token, id := e.register("alice")

	_, err := e.srv.userService.SetActive(t.Context(), id, false)
	require.NoError(t, err)

	resp, body := e.do(http.MethodPost, "/api/auth/login", map[string]any{
		"username": "alice", "password": "secret123",
	}, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Account is deactivated", body["error"])

	resp, _ = e.do(http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestMe(t *testing.T) {
	e := newTestEnv(t)
	token, id := e.register("alice")

	resp, body := e.do(http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.EqualValues(t, id, user["id"])
	assert.Equal(t, "alice@example.com", user["email"])

	resp, _ = e.do(http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("alice")

	resp, body := e.do(http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logout successful", body["message"])

	resp, body = e.do(http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", body["error"])
}

func TestRefresh(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("alice")

	resp, body := e.do(http.MethodPost, "/api/auth/refresh", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	fresh := body["token"].(string)
	assert.NotEqual(t, token, fresh)

	resp, _ = e.do(http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp, _ = e.do(http.MethodGet, "/api/auth/me", nil, fresh)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("alice")

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"missing fields", map[string]any{"current_password": "secret123"}, fiber.StatusBadRequest},
		{"wrong current", map[string]any{"current_password": "nope", "new_password": "another123"}, fiber.StatusUnauthorized},
		{"new too short", map[string]any{"current_password": "secret123", "new_password": "123"}, fiber.StatusBadRequest},
		{"success", map[string]any{"current_password": "secret123", "new_password": "another123"}, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := e.do(http.MethodPost, "/api/auth/change-password", tt.body, token)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	resp, _ := e.do(http.MethodPost, "/api/auth/login", map[string]any{
		"username": "alice", "password": "another123",
	}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
