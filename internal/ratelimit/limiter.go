// Package ratelimit limits requests per client IP, with Redis-backed counters
// when available and an in-memory token bucket otherwise.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration.
type Config struct {
	// PerMinute is the number of requests one IP may make per minute.
	PerMinute int
	// Prefix namespaces the Redis keys.
	Prefix string
}

// DefaultConfig allows ten lead submissions per IP per minute.
func DefaultConfig() Config {
	return Config{PerMinute: 10, Prefix: "diagnostico"}
}

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter checks per-IP request budgets.
type Limiter struct {
	config      Config
	redisClient *RedisClient
	redis       *redis_rate.Limiter

	mu       sync.Mutex
	fallback map[string]*rate.Limiter
	stop     chan struct{}
	once     sync.Once
}

// NewLimiter creates a limiter. redisClient may be nil or disabled.
func NewLimiter(redisClient *RedisClient, config Config) *Limiter {
	if config.PerMinute <= 0 {
		config.PerMinute = DefaultConfig().PerMinute
	}
	if config.Prefix == "" {
		config.Prefix = DefaultConfig().Prefix
	}

	l := &Limiter{
		config:      config,
		redisClient: redisClient,
		fallback:    make(map[string]*rate.Limiter),
		stop:        make(chan struct{}),
	}

	if redisClient.IsEnabled() {
		l.redis = redis_rate.NewLimiter(redisClient.Client())
		slog.Info("Redis rate limiter initialized", "per_minute", config.PerMinute)
	} else {
		slog.Warn("Redis unavailable, using in-memory rate limiting", "per_minute", config.PerMinute)
	}

	go l.cleanup()
	return l
}

// AllowIP checks whether ip may make another request this minute.
func (l *Limiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	key := fmt.Sprintf("%s:ratelimit:ip:%s", l.config.Prefix, ip)

	if l.redis != nil {
		res, err := l.allowRedis(ctx, key)
		if err == nil {
			return res, nil
		}
		slog.Warn("Redis rate limit check failed, using fallback", "error", err)
	}
	return l.allowMemory(key), nil
}

func (l *Limiter) allowRedis(ctx context.Context, key string) (*Result, error) {
	res, err := l.redis.Allow(ctx, key, redis_rate.PerMinute(l.config.PerMinute))
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: res.RetryAfter,
	}, nil
}

func (l *Limiter) allowMemory(key string) *Result {
	l.mu.Lock()
	lim, ok := l.fallback[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.config.PerMinute)), l.config.PerMinute)
		l.fallback[key] = lim
	}
	l.mu.Unlock()

	now := time.Now()
	res := &Result{Limit: l.config.PerMinute}

	r := lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		res.RetryAfter = delay
		res.ResetAt = now.Add(delay)
		return res
	}

	res.Allowed = true
	res.Remaining = int(lim.TokensAt(now))
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	res.ResetAt = now.Add(time.Minute)
	return res
}

// cleanup drops the in-memory limiters once the map grows large.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			if len(l.fallback) > 1000 {
				slog.Info("Cleaning up fallback rate limiters", "count", len(l.fallback))
				l.fallback = make(map[string]*rate.Limiter)
			}
			l.mu.Unlock()
		}
	}
}

// Stop ends the cleanup goroutine.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// GetStats returns limiter statistics.
func (l *Limiter) GetStats() map[string]interface{} {
	l.mu.Lock()
	n := len(l.fallback)
	l.mu.Unlock()

	stats := map[string]interface{}{
		"per_minute":        l.config.PerMinute,
		"redis_enabled":     l.redis != nil,
		"fallback_limiters": n,
	}
	if l.redisClient.IsEnabled() {
		stats["redis_pool"] = l.redisClient.PoolStats()
	}
	return stats
}
