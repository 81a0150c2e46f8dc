package api

import (
	"net/http"

	"wikigame/pkg/config"
)

// ConfigHandler exposes the game rules the UI needs to render.
type ConfigHandler struct {
	appCfg *config.Config
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{appCfg: cfg}
}

// ConfigResponse represents the config API response.
type ConfigResponse struct {
	Language       string `json:"language"`
	BaseURL        string `json:"base_url"`
	CandidateLimit int    `json:"candidate_limit"`
	GoalPoints     int    `json:"goal_points"`
	FetchTimeout   string `json:"fetch_timeout"`
	CacheEnabled   bool   `json:"cache_enabled"`
}

// ServeHTTP answers GET and the CORS preflight. Configuration is read-only at runtime.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	g := h.appCfg.Game
	writeJSON(w, http.StatusOK, ConfigResponse{
		Language:       h.appCfg.Wikipedia.Language,
		BaseURL:        h.appCfg.Wikipedia.BaseURL(),
		CandidateLimit: g.CandidateLimit,
		GoalPoints:     g.GoalPoints,
		FetchTimeout:   g.FetchTimeout.Std().String(),
		CacheEnabled:   h.appCfg.Cache.Enabled,
	})
}
