package api

import (
	"net/http"
	"runtime"
	"sync"

	"wikigame/pkg/tracker"
)

// SessionCounter reports how many game sessions are alive.
type SessionCounter interface {
	Len() int
}

type StatsHandler struct {
	tracker  *tracker.Tracker
	sessions SessionCounter
	mu       sync.Mutex
	maxMem   uint64
}

func NewStatsHandler(t *tracker.Tracker, sessions SessionCounter) *StatsHandler {
	return &StatsHandler{
		tracker:  t,
		sessions: sessions,
	}
}

type ProviderStatsDTO struct {
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	APISuccess   int64 `json:"api_success"`
	APIFailures  int64 `json:"api_errors"`
	HitRate      int64 `json:"hit_rate"`
	AvgLatencyMS int64 `json:"avg_latency_ms"`
	MaxLatencyMS int64 `json:"max_latency_ms"`
}

type RuntimeStats struct {
	MemoryMB    uint64 `json:"memory_mb"`
	MemoryMaxMB uint64 `json:"memory_max_mb"`
	Goroutines  int    `json:"goroutines"`
}

type StatsResponse struct {
	Runtime        RuntimeStats                `json:"runtime"`
	ActiveSessions int                         `json:"active_sessions"`
	Providers      map[string]ProviderStatsDTO `json:"providers"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	// 1. Runtime Diagnostics
	h.mu.Lock()
	rt := h.gatherRuntime()
	h.mu.Unlock()

	// 2. Build Response
	resp := StatsResponse{
		Runtime:   rt,
		Providers: make(map[string]ProviderStatsDTO),
	}
	if h.sessions != nil {
		resp.ActiveSessions = h.sessions.Len()
	}

	for provider, stats := range snapshot {
		totalCache := stats.CacheHits + stats.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (stats.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = ProviderStatsDTO{
			CacheHits:    stats.CacheHits,
			CacheMisses:  stats.CacheMisses,
			APISuccess:   stats.APISuccess,
			APIFailures:  stats.APIFailures,
			HitRate:      hitRate,
			AvgLatencyMS: stats.AvgLatencyMS(),
			MaxLatencyMS: stats.LatencyMaxMS,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *StatsHandler) gatherRuntime() RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.Sys > h.maxMem {
		h.maxMem = ms.Sys
	}
	return RuntimeStats{
		MemoryMB:    bToMb(ms.Sys),
		MemoryMaxMB: bToMb(h.maxMem),
		Goroutines:  runtime.NumGoroutine(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
