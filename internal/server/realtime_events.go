package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"aurachat/internal/featureflags"
	"aurachat/internal/notifications"
	"aurachat/internal/repository"
)

// realtimeNotifier delivers service notifications to websocket clients. With
// Redis the event goes through pub/sub so every process sees it; the local
// hub receives it back through StartWiring. Without Redis only sockets held
// by this process are reachable.
type realtimeNotifier struct {
	server *Server
}

func (n *realtimeNotifier) NotifyUser(ctx context.Context, userID uint, eventType string, payload map[string]any) error {
	s := n.server
	if !s.featureFlags.Enabled(featureflags.Realtime, userID) {
		return nil
	}
	if s.redis != nil {
		return s.notifier.NotifyUser(ctx, userID, eventType, payload)
	}

	raw, err := json.Marshal(notifications.Event{
		Type:      eventType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	s.hub.Broadcast(userID, string(raw))
	return nil
}

// trackPresence stamps last_seen once a user's final socket has gone away.
func (s *Server) trackPresence(users repository.UserRepository) {
	s.hub.OnUserOffline(func(userID uint) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := users.TouchLastSeen(ctx, userID, time.Now()); err != nil {
			slog.WarnContext(ctx, "failed to record last_seen on disconnect",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()))
		}
	})
}
