package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const maxResponseSamples = 1000

// LeadCounts tallies relayed leads for one service
type LeadCounts struct {
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
}

// Metrics holds in-process counters
type Metrics struct {
	RequestCount   int64
	ErrorCount     int64
	RateLimitBlock int64
	CacheHits      int64
	CacheMisses    int64
	StartTime      time.Time

	mu             sync.RWMutex
	responseTimes  []time.Duration
	byStatus       map[int]int64
	leadsByService map[string]*LeadCounts
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:      time.Now(),
		responseTimes:  make([]time.Duration, 0, maxResponseSamples),
		byStatus:       make(map[int]int64),
		leadsByService: make(map[string]*LeadCounts),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementRateLimitBlock counts a request refused by the rate limiter
func (m *Metrics) IncrementRateLimitBlock() {
	atomic.AddInt64(&m.RateLimitBlock, 1)
}

// IncrementCacheHit counts a response served from the cache
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss counts a cacheable request that reached its handler
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// RecordResponse records duration and status of a finished request. Only the
// latest samples are kept for percentiles.
func (m *Metrics) RecordResponse(duration time.Duration, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.responseTimes) >= maxResponseSamples {
		m.responseTimes = m.responseTimes[1:]
	}
	m.responseTimes = append(m.responseTimes, duration)
	m.byStatus[statusCode]++
}

// RecordLead counts a relayed lead
func (m *Metrics) RecordLead(service string, delivered bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts, ok := m.leadsByService[service]
	if !ok {
		counts = &LeadCounts{}
		m.leadsByService[service] = counts
	}
	if delivered {
		counts.Delivered++
	} else {
		counts.Failed++
	}
}

// Leads returns a copy of the per-service lead counters
func (m *Metrics) Leads() map[string]LeadCounts {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]LeadCounts, len(m.leadsByService))
	for service, counts := range m.leadsByService {
		out[service] = *counts
	}
	return out
}

// Percentile returns the response time at percentile p (0..100)
func (m *Metrics) Percentile(p float64) time.Duration {
	m.mu.RLock()
	samples := make([]time.Duration, len(m.responseTimes))
	copy(samples, m.responseTimes)
	m.mu.RUnlock()

	if len(samples) == 0 {
		return 0
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	idx := int(float64(len(samples)-1) * p / 100)
	return samples[idx]
}

// GetStats returns a snapshot for the health endpoint
func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	byStatus := make(map[int]int64, len(m.byStatus))
	for code, n := range m.byStatus {
		byStatus[code] = n
	}
	m.mu.RUnlock()

	return map[string]interface{}{
		"uptime_seconds":    int64(time.Since(m.StartTime).Seconds()),
		"requests":          atomic.LoadInt64(&m.RequestCount),
		"errors":            atomic.LoadInt64(&m.ErrorCount),
		"rate_limit_blocks": atomic.LoadInt64(&m.RateLimitBlock),
		"cache_hits":        atomic.LoadInt64(&m.CacheHits),
		"cache_misses":      atomic.LoadInt64(&m.CacheMisses),
		"status_codes":      byStatus,
		"p50_ms":            m.Percentile(50).Milliseconds(),
		"p95_ms":            m.Percentile(95).Milliseconds(),
		"leads":             m.Leads(),
	}
}
