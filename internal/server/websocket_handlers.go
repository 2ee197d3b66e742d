package server

import (
	"encoding/json"
	"log/slog"
	"time"

	"aurachat/internal/featureflags"
	"aurachat/internal/models"
	"aurachat/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler streams the caller's notification events. It must sit
// behind AuthRequired.
// @Summary Notification stream
// @Description Websocket upgrade. Sends post_liked, comment_created and user_followed events.
// @Tags realtime
// @Security BearerAuth
// @Param token query string false "JWT, for clients that cannot set headers"
// @Success 101 {string} string "Switching Protocols"
// @Failure 426 {object} models.ErrorResponse
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok || userID == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			slog.Warn("websocket registration refused",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()))
			msg, _ := json.Marshal(models.ErrorResponse{Error: err.Error()})
			_ = conn.WriteMessage(websocket.TextMessage, msg)
			_ = conn.Close()
			return
		}

		if hello, err := json.Marshal(notifications.Event{
			Type:      "connected",
			Payload:   map[string]any{"user_id": userID},
			CreatedAt: time.Now().UTC(),
		}); err == nil {
			client.TrySend(hello)
		}

		go client.WritePump()
		// Blocks until the peer goes away.
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(featureflags.Realtime, currentUserID(c)) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Realtime notifications", nil))
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, fiber.StatusUpgradeRequired,
				models.NewValidationError("Websocket upgrade required"))
		}
		return upgrade(c)
	}
}
