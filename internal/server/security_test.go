package server

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestSecurityMiddleware(t *testing.T) {
	e := newTestEnv(t)

	t.Run("Security Headers", func(t *testing.T) {
		resp, _ := e.do(http.MethodGet, "/health/live", nil, "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
		assert.Equal(t, "cross-origin", resp.Header.Get("Cross-Origin-Resource-Policy"))
	})

	t.Run("Request ID", func(t *testing.T) {
		resp, _ := e.do(http.MethodGet, "/health/live", nil, "")
		assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	})

	t.Run("Password hash never serialized", func(t *testing.T) {
		token, _ := e.register("mallory")
		resp, body := e.do(http.MethodGet, "/api/auth/me", nil, token)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotContains(t, body["user"], "password")
	})
}
