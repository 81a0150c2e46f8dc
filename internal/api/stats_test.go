package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikigame/pkg/tracker"
)

type fixedCounter int

func (c fixedCounter) Len() int { return int(c) }

func TestStatsHandler(t *testing.T) {
	tr := tracker.New()
	tr.TrackCacheHit("wikipedia")
	tr.TrackCacheMiss("wikipedia")
	tr.TrackCacheMiss("wikipedia")
	tr.TrackCacheMiss("wikipedia")
	tr.TrackAPISuccess("wikipedia", 100*time.Millisecond)
	tr.TrackAPISuccess("wikipedia", 300*time.Millisecond)
	tr.TrackAPIFailure("wikipedia")

	h := NewStatsHandler(tr, fixedCounter(3))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.ActiveSessions)
	assert.Positive(t, resp.Runtime.Goroutines)
	assert.GreaterOrEqual(t, resp.Runtime.MemoryMaxMB, resp.Runtime.MemoryMB)

	wp, ok := resp.Providers["wikipedia"]
	require.True(t, ok)
	assert.Equal(t, int64(25), wp.HitRate)
	assert.Equal(t, int64(2), wp.APISuccess)
	assert.Equal(t, int64(1), wp.APIFailures)
	assert.Equal(t, int64(200), wp.AvgLatencyMS)
	assert.Equal(t, int64(300), wp.MaxLatencyMS)
}
