package api

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"wikigame/pkg/game"
	"wikigame/pkg/model"
)

// SummarySource provides the lightweight article view.
type SummarySource interface {
	BaseURL() string
	Extract(ctx context.Context, title string) (string, error)
	SummaryLinks(ctx context.Context, title string) ([]string, error)
}

// SummaryHandler serves a plain-text extract plus link list without sanitizing full markup.
type SummaryHandler struct {
	src     SummarySource
	timeout time.Duration
}

// NewSummaryHandler creates a new SummaryHandler. Returns nil if src is missing.
func NewSummaryHandler(src SummarySource, timeout time.Duration) *SummaryHandler {
	if src == nil {
		return nil
	}
	return &SummaryHandler{src: src, timeout: timeout}
}

// SummaryResponse is the body of GET /api/summary.
type SummaryResponse struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Extract string   `json:"extract"`
	Links   []string `json:"links"`
}

// ServeHTTP handles GET /api/summary?title=...
func (h *SummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	title := model.DisplayTitle(r.URL.Query().Get("title"))
	if title == "" {
		writeError(w, game.ErrEmptyTitle, nil)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	resp := SummaryResponse{
		Title: title,
		URL:   model.ArticleURL(h.src.BaseURL(), title),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := h.src.Extract(gctx, title)
		resp.Extract = text
		return err
	})
	g.Go(func() error {
		links, err := h.src.SummaryLinks(gctx, title)
		resp.Links = links
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, err, nil)
		return
	}
	if resp.Links == nil {
		resp.Links = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}
