package service

import (
	"context"
	"log/slog"

	"aurachat/internal/events"
)

// UserNotifier pushes a realtime event to one user's sockets.
// *notifications.Notifier satisfies it.
type UserNotifier interface {
	NotifyUser(ctx context.Context, userID uint, eventType string, payload map[string]any) error
}

type noopNotifier struct{}

func (noopNotifier) NotifyUser(context.Context, uint, string, map[string]any) error { return nil }

func orNoopNotifier(n UserNotifier) UserNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

func orNoopPublisher(p events.Publisher) events.Publisher {
	if p == nil {
		return events.Noop{}
	}
	return p
}

// notify delivers a realtime event; failures are logged and never fail the request.
func notify(ctx context.Context, n UserNotifier, userID uint, eventType string, payload map[string]any) {
	if err := n.NotifyUser(ctx, userID, eventType, payload); err != nil {
		slog.WarnContext(ctx, "notification failed",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}

func publish(ctx context.Context, p events.Publisher, ev events.Event) {
	if err := p.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "domain event dropped",
			slog.String("event_type", ev.Type),
			slog.String("error", err.Error()))
	}
}
