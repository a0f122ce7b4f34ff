package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const window = time.Minute

// Decision is the outcome of a rate check
type Decision struct {
	Allowed      bool
	Limit        int
	Remaining    int
	ResetSeconds int
}

// Limiter caps requests per client over a one-minute window
type Limiter interface {
	CheckRate(ctx context.Context, clientID, scope string, limit int) (Decision, error)
}

// Manager provides Redis-backed rate limiting shared by every replica
type Manager struct {
	redis *redis.Client
	now   func() time.Time
}

// NewManager wraps an existing Redis client
func NewManager(client *redis.Client) *Manager {
	return &Manager{redis: client, now: time.Now}
}

// CheckRate increments the client's counter for the current window and
// reports whether the request is within limit.
func (m *Manager) CheckRate(ctx context.Context, clientID, scope string, limit int) (Decision, error) {
	now := m.now().UTC()
	bucket := now.Unix() / int64(window.Seconds())
	rk := fmt.Sprintf("rl:%s:%s:%d", scope, clientID, bucket)

	// Use INCR and set TTL if first time
	pipe := m.redis.TxPipeline()
	incr := pipe.Incr(ctx, rk)
	pipe.Expire(ctx, rk, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate check: %w", err)
	}

	return decide(int(incr.Val()), limit, now), nil
}

// Local is an in-process fallback used when Redis is not configured. Each
// client gets a token bucket that refills limit tokens per window.
type Local struct {
	mu        sync.Mutex
	clients   map[string]*localClient
	lastSweep time.Time
	now       func() time.Time
}

type localClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocal creates an in-memory limiter
func NewLocal() *Local {
	return &Local{clients: make(map[string]*localClient), now: time.Now}
}

// CheckRate implements Limiter
func (l *Local) CheckRate(ctx context.Context, clientID, scope string, limit int) (Decision, error) {
	now := l.now().UTC()
	if limit <= 0 {
		return decide(1, limit, now), nil
	}
	key := scope + "|" + clientID
	interval := window / time.Duration(limit)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	c, ok := l.clients[key]
	if !ok || c.limiter.Burst() != limit {
		c = &localClient{limiter: rate.NewLimiter(rate.Every(interval), limit)}
		l.clients[key] = c
	}
	c.lastSeen = now

	allowed := c.limiter.AllowN(now, 1)
	tokens := c.limiter.TokensAt(now)

	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}
	// seconds until the next token, or until the bucket is full again
	missing := float64(limit) - tokens
	if !allowed {
		missing = 1 - tokens
	}
	reset := int(math.Ceil(missing * interval.Seconds()))
	if reset < 0 {
		reset = 0
	}

	return Decision{
		Allowed:      allowed,
		Limit:        limit,
		Remaining:    remaining,
		ResetSeconds: reset,
	}, nil
}

// sweep drops clients idle for a full window; their buckets would be full
func (l *Local) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < window {
		return
	}
	l.lastSweep = now
	for k, c := range l.clients {
		if now.Sub(c.lastSeen) >= window {
			delete(l.clients, k)
		}
	}
}

func decide(count, limit int, now time.Time) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	// seconds until window end
	reset := int(window.Seconds()) - int(now.Unix()%int64(window.Seconds()))
	return Decision{
		Allowed:      count <= limit,
		Limit:        limit,
		Remaining:    remaining,
		ResetSeconds: reset,
	}
}
