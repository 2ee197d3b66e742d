package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis calls by operation.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurachat_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by outcome (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurachat_cache_lookups_total",
		Help: "Cache-aside lookups by outcome",
	}, []string{"outcome"})

	// AuthAttempts counts register and login attempts by outcome.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurachat_auth_attempts_total",
		Help: "Authentication attempts by action and outcome",
	}, []string{"action", "outcome"})

	// AvatarProcessing records how long avatar decode, resize and encode takes.
	AvatarProcessing = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aurachat_avatar_processing_seconds",
		Help:    "Avatar processing latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"outcome"})

	// SocialActions counts likes, comments and follows.
	SocialActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurachat_social_actions_total",
		Help: "Social interactions by action",
	}, []string{"action"})

	// WebSocketConnections is the number of open notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aurachat_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped for slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurachat_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// NotificationsPublished counts realtime notifications by event type.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurachat_notifications_published_total",
		Help: "Realtime notifications published by event type",
	}, []string{"event_type"})

	// DomainEvents counts events handed to the event bus by type and outcome.
	DomainEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurachat_domain_events_total",
		Help: "Domain events published by type and outcome",
	}, []string{"event_type", "outcome"})
)

// ObserveAvatar records one avatar processing run started at start.
func ObserveAvatar(start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	AvatarProcessing.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// Outcome maps an error to the "ok"/"error" label used across counters.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
