package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"aurachat/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrUserFull   = errors.New("user connection limit reached")
	ErrHubClosed  = errors.New("notification hub is shut down")
)

// Hub is a websocket hub that maps userID -> set of Clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
	presence   *Presence
	log        *observability.WSLogger
}

// NewHub creates a new Hub. rdb may be nil, in which case presence is local only.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		conns:    make(map[uint]map[*Client]struct{}),
		presence: NewPresence(rdb),
		log:      observability.NewWSLogger(slog.Default(), "notifications"),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "notifications" }

// OnUserOffline registers a callback for when a user's last socket has closed.
func (h *Hub) OnUserOffline(fn func(userID uint)) {
	h.presence.OnOffline(fn)
}

// Register a connection for a given userID. Returns the Client or an error if limits are exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, ErrServerFull
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, ErrUserFull
	}

	client := NewClient(h, conn, userID)
	client.OnActivity = func(uid uint) { h.presence.Touch(context.Background(), uid) }
	m[client] = struct{}{}
	h.totalConns++
	userConns := len(m)
	h.mu.Unlock()

	observability.WebSocketConnections.Inc()
	h.presence.Connect(context.Background(), userID)
	h.log.LogConnect(context.Background(), userID, userConns)
	return client, nil
}

// UnregisterClient removes a client. Safe to call more than once.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	removed := false
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			removed = true
			close(client.Send)
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
	h.mu.Unlock()

	if removed {
		observability.WebSocketConnections.Dec()
		h.presence.Disconnect(client.UserID)
		h.log.LogDisconnect(context.Background(), client.UserID, "closed")
	}
}

// Broadcast sends message to all connections for userID
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[userID]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether a user currently has an active socket here or elsewhere.
func (h *Hub) IsOnline(userID uint) bool {
	return h.presence.IsOnline(context.Background(), userID)
}

// ConnectionCount returns the number of sockets open on this process.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// StartWiring subscribes to the Redis notification channels and forwards
// each message to the matching user's sockets.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	h.log.LogLifecycle(ctx, "wiring_started")
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == broadcastChannel {
			h.BroadcastAll(payload)
			return
		}
		userID, ok := parseUserChannel(channel)
		if !ok {
			slog.Warn("invalid notification channel", slog.String("channel", channel))
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown closes every socket with a going-away frame.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.presence.Stop()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for userID, userConns := range h.conns {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				h.log.LogError(ctx, userID, err, "close_frame")
			}
			if err := client.Conn.Close(); err != nil {
				h.log.LogError(ctx, userID, err, "close")
			}
		}
	}
	closedConns := h.totalConns
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	h.mu.Unlock()

	observability.WebSocketConnections.Sub(float64(closedConns))
	h.log.LogLifecycle(ctx, "shutdown", slog.Int("closed_connections", closedConns))
	return nil
}
