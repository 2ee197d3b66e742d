package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"aurachat/internal/config"
	"aurachat/internal/notifications"
	"aurachat/internal/testutil"

	"github.com/gofiber/fiber/v2"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsocket_RequiresUpgrade(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("alice")

	resp, body := e.do(http.MethodGet, "/api/ws", nil, token)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
	assert.Equal(t, "Websocket upgrade required", body["error"])

	resp, _ = e.do(http.MethodGet, "/api/ws", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebsocket_DisabledByFlag(t *testing.T) {
	e := newTestEnv(t, func(cfg *config.Config) { cfg.FeatureFlags = "realtime=off" })
	token, _ := e.register("alice")

	resp, _ := e.do(http.MethodGet, "/api/ws", nil, token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestFeatureFlagsEndpoint(t *testing.T) {
	e := newTestEnv(t, func(cfg *config.Config) { cfg.FeatureFlags = "webp_avatars=on" })
	token, _ := e.register("alice")

	resp, body := e.do(http.MethodGet, "/api/feature-flags", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	evaluated := body["evaluated"].(map[string]any)
	assert.Equal(t, true, evaluated["webp_avatars"])
	assert.Equal(t, true, evaluated["realtime"])
}

// listen serves app on a loopback port until the test ends.
func listen(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return ln.Addr().String()
}

func readEvent(t *testing.T, conn *gorillaws.Conn) notifications.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev notifications.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebsocket_DeliversLikeWithoutRedis(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	srv, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.hub.Shutdown(context.Background()) })

	e := &testEnv{t: t, db: db, srv: srv, app: srv.NewApp()}
	author, authorID := e.register("alice")
	reader, readerID := e.register("bob")

	addr := listen(t, e.app)
	conn, resp, err := gorillaws.DefaultDialer.Dial(fmt.Sprintf("ws://%s/api/ws?token=%s", addr, author), nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer func() { _ = conn.Close() }()

	hello := readEvent(t, conn)
	assert.Equal(t, "connected", hello.Type)
	assert.EqualValues(t, authorID, hello.Payload["user_id"])

	_, body := e.do(http.MethodPost, "/api/posts", map[string]any{"content": "ping"}, author)
	postID := body["post"].(map[string]any)["id"]

	r, _ := e.do(http.MethodPost, fmt.Sprintf("/api/posts/%v/like", postID), nil, reader)
	require.Equal(t, fiber.StatusOK, r.StatusCode)

	ev := readEvent(t, conn)
	assert.Equal(t, notifications.EventPostLiked, ev.Type)
	assert.EqualValues(t, postID, ev.Payload["post_id"])
	assert.EqualValues(t, readerID, ev.Payload["actor_id"])
}

func TestRealtimeNotifier_FlagOffIsSilent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	cfg := testConfig()
	cfg.FeatureFlags = "realtime=off"
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.hub.Shutdown(context.Background()) })

	n := &realtimeNotifier{server: srv}
	assert.NoError(t, n.NotifyUser(t.Context(), 1, notifications.EventUserFollowed, map[string]any{"actor_id": 2}))
}
