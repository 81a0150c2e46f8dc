package tracker

import (
	"sync"
	"sync/atomic"
	"time"
)

// Tracker tracks usage statistics per provider.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ProviderStats
}

// ProviderStats holds metrics for a specific provider.
// Fields are accessed atomically.
type ProviderStats struct {
	CacheHits      int64 `json:"cache_hits"`
	CacheMisses    int64 `json:"cache_misses"`
	APISuccess     int64 `json:"api_success"`
	APIFailures    int64 `json:"api_failures"`
	LatencyTotalMS int64 `json:"latency_total_ms"`
	LatencyMaxMS   int64 `json:"latency_max_ms"`
}

// AvgLatencyMS returns the mean latency of successful calls.
func (s ProviderStats) AvgLatencyMS() int64 {
	if s.APISuccess == 0 {
		return 0
	}
	return s.LatencyTotalMS / s.APISuccess
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*ProviderStats),
	}
}

// getStats returns the stats object for a provider, creating it if needed.
func (t *Tracker) getStats(provider string) *ProviderStats {
	t.mu.RLock()
	s, ok := t.stats[provider]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[provider]; ok {
		return s
	}
	s = &ProviderStats{}
	t.stats[provider] = s
	return s
}

// TrackCacheHit increments the cache hit counter.
func (t *Tracker) TrackCacheHit(provider string) {
	atomic.AddInt64(&t.getStats(provider).CacheHits, 1)
}

func (t *Tracker) TrackCacheMiss(provider string) {
	atomic.AddInt64(&t.getStats(provider).CacheMisses, 1)
}

// TrackAPISuccess records a successful upstream call and how long it took.
func (t *Tracker) TrackAPISuccess(provider string, latency time.Duration) {
	s := t.getStats(provider)
	ms := latency.Milliseconds()
	atomic.AddInt64(&s.APISuccess, 1)
	atomic.AddInt64(&s.LatencyTotalMS, ms)
	for {
		cur := atomic.LoadInt64(&s.LatencyMaxMS)
		if ms <= cur || atomic.CompareAndSwapInt64(&s.LatencyMaxMS, cur, ms) {
			return
		}
	}
}

func (t *Tracker) TrackAPIFailure(provider string) {
	atomic.AddInt64(&t.getStats(provider).APIFailures, 1)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]ProviderStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]ProviderStats)
	for k, v := range t.stats {
		result[k] = ProviderStats{
			CacheHits:      atomic.LoadInt64(&v.CacheHits),
			CacheMisses:    atomic.LoadInt64(&v.CacheMisses),
			APISuccess:     atomic.LoadInt64(&v.APISuccess),
			APIFailures:    atomic.LoadInt64(&v.APIFailures),
			LatencyTotalMS: atomic.LoadInt64(&v.LatencyTotalMS),
			LatencyMaxMS:   atomic.LoadInt64(&v.LatencyMaxMS),
		}
	}
	return result
}

// Reset clears all counters.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = make(map[string]*ProviderStats)
}
