package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"wikigame/pkg/apisession"
	"wikigame/pkg/game"
	"wikigame/pkg/model"
	"wikigame/pkg/navigation"
)

const (
	sessionHeader = "X-Session-ID"
	sessionCookie = "wikigame_session"
	maxBodyBytes  = 64 << 10
)

var errBadRequest = errors.New("invalid request body")

// GameHandler exposes game sessions over HTTP. Each browser gets its own session.
type GameHandler struct {
	sessions *apisession.Store[game.Session]
	clicks   *navigation.Interceptor
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(sessions *apisession.Store[game.Session], clicks *navigation.Interceptor) *GameHandler {
	return &GameHandler{sessions: sessions, clicks: clicks}
}

// NavigateRequest is the body of POST /api/game/navigate.
type NavigateRequest struct {
	Title string `json:"title"`
}

// ClickResponse reports how a click was classified and the resulting state.
type ClickResponse struct {
	Action navigation.Action `json:"action"`
	State  game.Snapshot     `json:"state"`
}

// session resolves the caller's session, minting an id when none is presented.
// The id is echoed in the response header and cookie.
func (h *GameHandler) session(w http.ResponseWriter, r *http.Request) *game.Session {
	id := requestSessionID(r)
	if id == "" {
		id = uuid.NewString()
		slog.Debug("Minted game session", "id", id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(sessionHeader, id)
	return h.sessions.Get(id)
}

// requestSessionID returns the session id from header, query or cookie, in that order.
// Ids that are not UUIDs are ignored.
func requestSessionID(r *http.Request) string {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		id = r.URL.Query().Get("session")
	}
	if id == "" {
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		slog.Debug("Ignoring malformed session id", "id", id)
		return ""
	}
	return id
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// HandleStart picks a goal and a start article.
// POST /api/game/start
func (h *GameHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	sess := h.session(w, r)

	start := time.Now()
	if err := sess.Start(r.Context()); err != nil {
		snap := sess.Snapshot()
		writeError(w, err, &snap)
		return
	}
	snap := sess.Snapshot()
	slog.Info("Game started", "goal", snap.GoalTitle, "duration", time.Since(start))
	writeJSON(w, http.StatusOK, snap)
}

// HandleNavigate moves to the named article.
// POST /api/game/navigate {"title": "..."}
func (h *GameHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	sess := h.session(w, r)

	var req NavigateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := sess.Navigate(r.Context(), req.Title); err != nil {
		snap := sess.Snapshot()
		writeError(w, err, &snap)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// HandleClick classifies a click on a rendered surface and navigates when it
// names an article.
// POST /api/game/click
func (h *GameHandler) HandleClick(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	sess := h.session(w, r)

	var ev navigation.ClickEvent
	if err := decodeBody(w, r, &ev); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	action := h.clicks.Classify(ev)
	if !action.Navigate {
		writeJSON(w, http.StatusOK, ClickResponse{Action: action, State: sess.Snapshot()})
		return
	}
	if err := sess.Navigate(r.Context(), action.Title); err != nil {
		snap := sess.Snapshot()
		writeError(w, err, &snap)
		return
	}
	writeJSON(w, http.StatusOK, ClickResponse{Action: action, State: sess.Snapshot()})
}

// HandleRestart discards the current game.
// POST /api/game/restart
func (h *GameHandler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	sess := h.session(w, r)
	sess.Restart()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// HandleState returns the current snapshot.
// GET /api/game/state
func (h *GameHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	writeJSON(w, http.StatusOK, h.session(w, r).Snapshot())
}

// HandleEvents returns the event trail of the current game.
// GET /api/game/events
func (h *GameHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	events := h.session(w, r).Events()
	if events == nil {
		events = []model.GameEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}
