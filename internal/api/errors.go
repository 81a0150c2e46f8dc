package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"wikigame/pkg/articleproc"
	"wikigame/pkg/game"
	"wikigame/pkg/wikipedia"
)

// ErrorResponse is the body of every failed API call. State is included when
// the failure happened inside a game so the UI can render the notice.
type ErrorResponse struct {
	Error string         `json:"error"`
	State *game.Snapshot `json:"state,omitempty"`
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrEmptyTitle):
		return http.StatusBadRequest
	case errors.Is(err, wikipedia.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, articleproc.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wikipedia.ErrSourceUnavailable),
		errors.Is(err, wikipedia.ErrMalformedResponse),
		errors.Is(err, game.ErrNoDistinctStart):
		return http.StatusBadGateway
	case errors.Is(err, game.ErrNotStarted),
		errors.Is(err, game.ErrAlreadyStarted),
		errors.Is(err, game.ErrBusy),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrSessionReset):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error, snap *game.Snapshot) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("API request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), State: snap})
}
