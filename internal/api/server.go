package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"wikigame/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, game *GameHandler, summary *SummaryHandler, stats *StatsHandler, cfg *ConfigHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health and Version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Game Endpoints
	mux.HandleFunc("OPTIONS /api/game/{action}", handlePreflight)
	mux.HandleFunc("POST /api/game/start", game.HandleStart)
	mux.HandleFunc("POST /api/game/navigate", game.HandleNavigate)
	mux.HandleFunc("POST /api/game/click", game.HandleClick)
	mux.HandleFunc("POST /api/game/restart", game.HandleRestart)
	mux.HandleFunc("GET /api/game/state", game.HandleState)
	mux.HandleFunc("GET /api/game/events", game.HandleEvents)
	mux.HandleFunc("GET /api/game/stream", game.HandleStream)

	// 3. Summary View
	if summary != nil {
		mux.Handle("GET /api/summary", summary)
	}

	// 4. Diagnostics
	mux.Handle("GET /api/stats", stats)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)
	if cfg != nil {
		mux.Handle("/api/config", cfg)
	}

	// 5. Shutdown Endpoint
	if shutdown != nil {
		mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
			slog.Info("Graceful shutdown initiated via API")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte("Shutting down...")); err != nil {
				slog.Error("Failed to write shutdown response", "error", err)
			}
			// Call shutdown in a goroutine to allow response to flush
			go func() {
				time.Sleep(100 * time.Millisecond)
				shutdown()
			}()
		})
	}

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No WriteTimeout: the snapshot stream is long-lived and sets its own deadlines.
		IdleTimeout: 60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}

func handlePreflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusOK)
}

// setCORS opens game endpoints to any origin.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+sessionHeader)
	w.Header().Set("Access-Control-Expose-Headers", sessionHeader)
}
