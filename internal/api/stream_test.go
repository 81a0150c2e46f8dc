package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikigame/pkg/game"
)

func TestHandleStream(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.NewString()

	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/api/game/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{sessionHeader: {id}})
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, id, resp.Header.Get(sessionHeader))

	read := func() game.Snapshot {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var snap game.Snapshot
		require.NoError(t, conn.ReadJSON(&snap))
		return snap
	}

	first := read()
	assert.Equal(t, game.PhaseNotStarted, first.Phase)

	startResp := env.call(t, http.MethodPost, "/api/game/start", id, nil, nil)
	require.Equal(t, http.StatusOK, startResp.StatusCode)

	// Loading then ready, in version order.
	loading := read()
	assert.Equal(t, game.PhaseLoading, loading.Phase)
	assert.Nil(t, loading.Article)
	ready := read()
	assert.Equal(t, game.PhaseReady, ready.Phase)
	assert.Greater(t, ready.Version, loading.Version)
	require.NotNil(t, ready.Article)
	assert.Equal(t, "Banana", ready.Article.Title)
}
