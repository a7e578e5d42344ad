package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/apperror"
	"github.com/klass-lk/blogboot/internal/observability"
	"github.com/klass-lk/blogboot/internal/server"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LocalLimiter keeps one token bucket per key in process memory. Buckets
// idle long enough to have refilled are dropped, since a fresh bucket
// behaves the same.
type LocalLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows perMinute requests per key per minute. A
// non-positive perMinute disables limiting.
func NewLocalLimiter(perMinute int) *LocalLimiter {
	l := &LocalLimiter{
		buckets:   make(map[string]*bucket),
		limit:     rate.Inf,
		idleAfter: time.Minute,
		now:       time.Now,
	}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
		l.burst = perMinute
	}
	return l
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.limit == rate.Inf {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleAfter {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) >= l.idleAfter {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

// RedisLimiter counts requests per fixed window in Redis so the limit is
// shared across instances.
type RedisLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow increments the window counter and sets its expiry in one
// transaction. EXPIRE NX leaves a running window alone and repairs a
// counter that lost its expiry.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "rl:" + key
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return true, err
	}
	return incr.Val() <= int64(l.limit), nil
}

// RateLimit keys requests by user id when authenticated, otherwise by
// client IP. Limiter errors let the request through.
func RateLimit(limiter Limiter, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := "ip:" + c.ClientIP()
		if userID := c.GetString(server.UserIDKey); userID != "" {
			id = "user:" + userID
		}

		allowed, err := limiter.Allow(c.Request.Context(), fmt.Sprintf("%s:%s", name, id))
		if err != nil {
			slog.WarnContext(c.Request.Context(), "rate limiter unavailable", "error", err)
		}
		if !allowed {
			observability.RateLimitedTotal.WithLabelValues(name).Inc()
			server.SendError(c, apperror.TooManyRequests("Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
