package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_AddsContextValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewLogger("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(9))
	log.With("component", "test").InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, float64(9), record["user_id"])
	assert.Equal(t, "test", record["component"])
}

func TestNewLogger_TestEnvSuppressesInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewLogger("test", &buf)
	log.Info("quiet")
	assert.Zero(t, buf.Len())
	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestContextMiddleware_PropagatesLocals(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(5))
		return c.Next()
	})
	app.Use(ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		return c.JSON(fiber.Map{
			"request_id": ctx.Value(RequestIDKey),
			"user_id":    ctx.Value(UserIDKey),
		})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["request_id"])
	assert.Equal(t, float64(5), body["user_id"])
}
