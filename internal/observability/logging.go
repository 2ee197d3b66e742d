// Package observability provides Prometheus metrics, OpenTelemetry tracing
// and the connection-event logger used by the realtime hub.
package observability

import (
	"context"
	"log/slog"
)

// WSLogger writes WebSocket lifecycle events with a consistent set of attributes.
type WSLogger struct {
	hub    string
	logger *slog.Logger
}

// NewWSLogger returns a WSLogger tagging every line with the hub name.
func NewWSLogger(logger *slog.Logger, hub string) *WSLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSLogger{hub: hub, logger: logger}
}

func (l *WSLogger) LogConnect(ctx context.Context, userID uint, connections int) {
	l.logger.InfoContext(ctx, "websocket connected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.Int("user_connections", connections),
	)
}

func (l *WSLogger) LogDisconnect(ctx context.Context, userID uint, reason string) {
	l.logger.InfoContext(ctx, "websocket disconnected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("reason", reason),
	)
}

func (l *WSLogger) LogError(ctx context.Context, userID uint, err error, op string) {
	l.logger.ErrorContext(ctx, "websocket error",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}

// LogLifecycle logs hub-level events such as wiring start and shutdown.
func (l *WSLogger) LogLifecycle(ctx context.Context, event string, attrs ...any) {
	l.logger.InfoContext(ctx, "websocket lifecycle",
		append([]any{slog.String("hub", l.hub), slog.String("event", event)}, attrs...)...)
}
