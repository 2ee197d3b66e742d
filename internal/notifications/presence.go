package notifications

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	presenceOnlineSetKey = "ws:online_users"
	presenceSeenPrefix   = "ws:last_seen:"
	presenceTTL          = 90 * time.Second
	offlineGrace         = 5 * time.Second
	reaperInterval       = 60 * time.Second
)

// Presence tracks which users hold at least one socket. The Redis set lets
// several server processes agree; without Redis only local sockets count.
// A user goes offline after a grace period so quick reconnects stay silent.
type Presence struct {
	rdb *redis.Client

	mu              sync.Mutex
	local           map[uint]int
	offlineTimers   map[uint]*time.Timer
	offlineNotified map[uint]bool
	grace           time.Duration
	onOffline       func(userID uint)

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewPresence starts the stale-entry reaper when Redis is available.
func NewPresence(rdb *redis.Client) *Presence {
	p := &Presence{
		rdb:             rdb,
		local:           make(map[uint]int),
		offlineTimers:   make(map[uint]*time.Timer),
		offlineNotified: make(map[uint]bool),
		grace:           offlineGrace,
		stopCh:          make(chan struct{}),
	}
	if rdb != nil {
		go p.reaperLoop()
	}
	return p
}

// OnOffline sets the callback run once a user's last socket is gone for good.
func (p *Presence) OnOffline(fn func(userID uint)) {
	p.mu.Lock()
	p.onOffline = fn
	p.mu.Unlock()
}

func (p *Presence) SetGracePeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.grace = d
	p.mu.Unlock()
}

func (p *Presence) Connect(ctx context.Context, userID uint) {
	p.mu.Lock()
	if t, ok := p.offlineTimers[userID]; ok {
		t.Stop()
		delete(p.offlineTimers, userID)
	}
	p.local[userID]++
	p.offlineNotified[userID] = false
	p.mu.Unlock()

	p.Touch(ctx, userID)
}

// Touch refreshes the user's Redis heartbeat.
func (p *Presence) Touch(ctx context.Context, userID uint) {
	if p.rdb == nil {
		return
	}
	uid := strconv.FormatUint(uint64(userID), 10)
	pipe := p.rdb.TxPipeline()
	pipe.SAdd(ctx, presenceOnlineSetKey, uid)
	pipe.SetEx(ctx, presenceSeenPrefix+uid, strconv.FormatInt(time.Now().Unix(), 10), presenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.WarnContext(ctx, "presence heartbeat failed", slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
	}
}

func (p *Presence) Disconnect(userID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := p.local[userID] - 1; n > 0 {
		p.local[userID] = n
		return
	}
	delete(p.local, userID)

	if t, ok := p.offlineTimers[userID]; ok {
		t.Stop()
	}
	p.offlineTimers[userID] = time.AfterFunc(p.grace, func() {
		p.finalizeOffline(context.Background(), userID)
	})
}

func (p *Presence) IsOnline(ctx context.Context, userID uint) bool {
	p.mu.Lock()
	local := p.local[userID] > 0
	p.mu.Unlock()
	if local || p.rdb == nil {
		return local
	}
	n, err := p.rdb.Exists(ctx, presenceSeenPrefix+strconv.FormatUint(uint64(userID), 10)).Result()
	return err == nil && n > 0
}

func (p *Presence) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.mu.Lock()
		for id, t := range p.offlineTimers {
			t.Stop()
			delete(p.offlineTimers, id)
		}
		p.mu.Unlock()
	})
}

func (p *Presence) finalizeOffline(ctx context.Context, userID uint) {
	p.mu.Lock()
	delete(p.offlineTimers, userID)
	reconnected := p.local[userID] > 0
	p.mu.Unlock()
	if reconnected {
		return
	}

	if p.rdb != nil {
		uid := strconv.FormatUint(uint64(userID), 10)
		// Another process may still hold a socket for this user.
		if p.othersHold(ctx, userID) {
			return
		}
		_ = p.rdb.Del(ctx, presenceSeenPrefix+uid).Err()
		_ = p.rdb.SRem(ctx, presenceOnlineSetKey, uid).Err()
	}
	p.emitOffline(userID)
}

// othersHold reports whether a heartbeat younger than the grace period exists,
// meaning a socket elsewhere refreshed it after ours went away.
func (p *Presence) othersHold(ctx context.Context, userID uint) bool {
	raw, err := p.rdb.Get(ctx, presenceSeenPrefix+strconv.FormatUint(uint64(userID), 10)).Int64()
	if err != nil {
		return false
	}
	p.mu.Lock()
	grace := p.grace
	p.mu.Unlock()
	return time.Since(time.Unix(raw, 0)) < grace
}

// reapOnce drops set members whose heartbeat expired.
func (p *Presence) reapOnce(ctx context.Context) {
	if p.rdb == nil {
		return
	}
	members, err := p.rdb.SMembers(ctx, presenceOnlineSetKey).Result()
	if err != nil {
		return
	}
	for _, raw := range members {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = p.rdb.SRem(ctx, presenceOnlineSetKey, raw).Err()
			continue
		}
		if n, err := p.rdb.Exists(ctx, presenceSeenPrefix+raw).Result(); err != nil || n > 0 {
			continue
		}
		_ = p.rdb.SRem(ctx, presenceOnlineSetKey, raw).Err()

		p.mu.Lock()
		hasLocal := p.local[uint(id)] > 0
		p.mu.Unlock()
		if !hasLocal {
			p.emitOffline(uint(id))
		}
	}
}

func (p *Presence) reaperLoop() {
	ticker := time.NewTicker(reaperInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.reapOnce(context.Background())
		}
	}
}

func (p *Presence) emitOffline(userID uint) {
	p.mu.Lock()
	if p.offlineNotified[userID] {
		p.mu.Unlock()
		return
	}
	p.offlineNotified[userID] = true
	cb := p.onOffline
	p.mu.Unlock()
	if cb != nil {
		cb(userID)
	}
}
