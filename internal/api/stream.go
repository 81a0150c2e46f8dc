package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 << 10,
	// The UI may be served from another origin; endpoints are CORS-open as well.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleStream pushes a snapshot after every transition of the caller's session.
// GET /api/game/stream
func (h *GameHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)

	conn, err := upgrader.Upgrade(w, r, w.Header())
	if err != nil {
		// Upgrade already replied with an error status.
		slog.Warn("Snapshot stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	snaps, cancel := sess.Subscribe()
	defer cancel()

	// The client never sends anything we act on; reading keeps pongs and close frames flowing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				slog.Debug("Snapshot stream write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
