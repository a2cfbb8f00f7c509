// Package cache keeps short-lived copies of deterministic JSON responses.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grupoquokka/diagnostico/internal/monitoring"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool { return now.After(e.expiresAt) }

// Cache is a TTL map safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*entry
	ttl   time.Duration
	max   int

	stop chan struct{}
	once sync.Once
}

// NewCache creates a cache holding at most maxItems entries for ttl each.
func NewCache(ttl time.Duration, maxItems int) *Cache {
	c := &Cache{
		items: make(map[string]*entry),
		ttl:   ttl,
		max:   maxItems,
		stop:  make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, e := range c.items {
				if e.expired(now) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Stop ends the cleanup goroutine.
func (c *Cache) Stop() { c.once.Do(func() { close(c.stop) }) }

// Get returns the live value for key.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || e.expired(time.Now()) {
		return nil, false
	}
	return e.data, true
}

// Set stores data under key. When full, the set is skipped.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.max > 0 && len(c.items) >= c.max {
		return
	}
	c.items[key] = &entry{data: data, expiresAt: time.Now().Add(c.ttl)}
}

// Size returns the number of stored entries, expired or not.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns cache statistics.
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	expired := 0
	for _, e := range c.items {
		if e.expired(now) {
			expired++
		}
	}
	return map[string]interface{}{
		"total_items":   len(c.items),
		"expired_items": expired,
		"max_items":     c.max,
		"ttl_seconds":   c.ttl.Seconds(),
	}
}

// Key hashes a request path and body.
func Key(path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Middleware serves repeated requests with an identical path and body from
// the cache. Only 200 responses with a body and no recorded errors are
// stored. Use it on handlers whose output depends on nothing but the request.
func (c *Cache) Middleware(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			ctx.Next()
			return
		}
		ctx.Request.Body = io.NopCloser(bytes.NewReader(body))

		key := Key(ctx.Request.Method+" "+ctx.Request.URL.Path, body)
		if data, ok := c.Get(key); ok {
			if metrics != nil {
				metrics.IncrementCacheHit()
			}
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", data)
			ctx.Abort()
			return
		}
		if metrics != nil {
			metrics.IncrementCacheMiss()
		}

		w := &responseWriter{ResponseWriter: ctx.Writer, body: &bytes.Buffer{}}
		ctx.Writer = w
		ctx.Header("X-Cache", "MISS")
		ctx.Next()

		if len(ctx.Errors) == 0 && w.Status() == http.StatusOK && w.body.Len() > 0 {
			c.Set(key, w.body.Bytes())
			slog.Debug("Response cached", "path", ctx.Request.URL.Path, "key", key[:8])
		}
	}
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
