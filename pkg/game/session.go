package game

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"wikigame/pkg/articleproc"
	"wikigame/pkg/model"
	"wikigame/pkg/navigation"
	"wikigame/pkg/wikipedia"
)

// Fetcher is the content source a session reads from.
type Fetcher interface {
	RandomArticle(ctx context.Context) (model.PageRef, error)
	RawMarkup(ctx context.Context, title string) ([]byte, error)
}

// Sanitizer turns raw markup into displayable content.
type Sanitizer interface {
	Sanitize(raw []byte) (*articleproc.Result, error)
}

// EventRecorder keeps the trail of a game.
type EventRecorder interface {
	AddEvent(event *model.GameEvent)
	Events() []model.GameEvent
	Reset()
}

// Config holds the rules of a session.
type Config struct {
	BaseURL        string
	CandidateLimit int
	GoalPoints     int
	FetchTimeout   time.Duration
	StartAttempts  int
}

// Snapshot is what observers see of a session.
type Snapshot struct {
	Version    uint64                      `json:"version"`
	Phase      Phase                       `json:"phase"`
	Started    bool                        `json:"started"`
	GoalTitle  string                      `json:"goal_title"`
	GoalURL    string                      `json:"goal_url"`
	Article    *model.Article              `json:"article"` // nil while loading
	Pending    string                      `json:"pending,omitempty"`
	Candidates []model.NavigationCandidate `json:"candidates"`
	Steps      int                         `json:"steps"`
	Points     int                         `json:"points"`
	Notice     string                      `json:"notice,omitempty"`
}

// Session is the single owner of one game's State. All transitions go through it.
type Session struct {
	fetcher   Fetcher
	sanitizer Sanitizer
	events    EventRecorder
	cfg       Config

	mu      sync.Mutex
	state   State
	gen     uint64 // bumped by Restart; stale fetch results compare against it
	version uint64
	subs    map[chan Snapshot]struct{}
}

// NewSession creates a session that has not started.
func NewSession(f Fetcher, s Sanitizer, events EventRecorder, cfg Config) *Session {
	if cfg.StartAttempts <= 0 {
		cfg.StartAttempts = 1
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	return &Session{
		fetcher:   f,
		sanitizer: s,
		events:    events,
		cfg:       cfg,
		subs:      make(map[chan Snapshot]struct{}),
	}
}

// State returns the current state value.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the observer view of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Events returns the game's event trail.
func (s *Session) Events() []model.GameEvent {
	return s.events.Events()
}

func (s *Session) snapshotLocked() Snapshot {
	st := s.state
	snap := Snapshot{
		Version:    s.version,
		Phase:      st.Phase,
		Started:    st.Started,
		GoalTitle:  st.GoalTitle,
		GoalURL:    st.GoalURL,
		Pending:    st.Pending,
		Steps:      st.Steps,
		Points:     st.Points,
		Notice:     st.Notice,
		Candidates: []model.NavigationCandidate{},
	}
	if st.Phase != PhaseLoading {
		snap.Article = st.Current
	}
	if st.Phase == PhaseReady {
		snap.Candidates = navigation.Candidates(st.Current, s.cfg.CandidateLimit)
	}
	return snap
}

// Subscribe returns a channel receiving a snapshot after every transition,
// starting with the current one. Slow receivers miss frames rather than
// blocking the session. Call cancel to unsubscribe.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// setLocked installs next and notifies subscribers.
func (s *Session) setLocked(next State) {
	s.state = next
	s.version++
	snap := s.snapshotLocked()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			slog.Debug("Dropping snapshot for slow subscriber", "version", snap.Version)
		}
	}
}

// Start picks a goal and a distinct start article. On any failure the session
// returns to not started and the error is returned.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	next, err := s.state.BeginStart()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.setLocked(next)
	gen := s.gen
	s.mu.Unlock()

	goal, start, err := s.pickArticles(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return ErrSessionReset
	}
	if err != nil {
		s.setLocked(s.state.AbortStart())
		slog.Warn("Game start failed", "error", err)
		return err
	}

	s.setLocked(s.state.CompleteStart(goal, start))
	s.events.AddEvent(&model.GameEvent{
		Type:    model.EventStart,
		Title:   start.Title,
		Summary: "goal: " + goal.Title,
	})
	slog.Info("Game started", "goal", goal.Title, "start", start.Title)
	return nil
}

// pickArticles draws the goal, then validates it while the start article loads.
func (s *Session) pickArticles(ctx context.Context) (model.PageRef, *model.Article, error) {
	goal, err := s.randomRef(ctx)
	if err != nil {
		return model.PageRef{}, nil, fmt.Errorf("pick goal: %w", err)
	}

	var candidate *model.Article
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The goal must exist; its content is never shown before it is reached.
		fctx, cancel := context.WithTimeout(gctx, s.cfg.FetchTimeout)
		defer cancel()
		if _, err := s.fetcher.RawMarkup(fctx, goal.Title); err != nil {
			return fmt.Errorf("validate goal %q: %w", goal.Title, timeoutAsUnavailable(err))
		}
		return nil
	})
	g.Go(func() error {
		art, err := s.randomArticle(gctx)
		if err != nil {
			return fmt.Errorf("pick start: %w", err)
		}
		candidate = art
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.PageRef{}, nil, err
	}

	for attempt := 1; model.SameArticle(candidate.Title, goal.Title); attempt++ {
		if attempt >= s.cfg.StartAttempts {
			return model.PageRef{}, nil, ErrNoDistinctStart
		}
		slog.Debug("Start article collides with goal, re-picking", "title", candidate.Title, "attempt", attempt)
		art, err := s.randomArticle(ctx)
		if err != nil {
			return model.PageRef{}, nil, fmt.Errorf("pick start: %w", err)
		}
		candidate = art
	}
	return goal, candidate, nil
}

// randomRef draws a random title under the fetch timeout.
func (s *Session) randomRef(ctx context.Context) (model.PageRef, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	ref, err := s.fetcher.RandomArticle(ctx)
	if err != nil {
		return model.PageRef{}, timeoutAsUnavailable(err)
	}
	return ref, nil
}

func (s *Session) randomArticle(ctx context.Context) (*model.Article, error) {
	ref, err := s.randomRef(ctx)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, ref.Title)
}

// load fetches and sanitizes one article under the fetch timeout.
func (s *Session) load(ctx context.Context, title string) (*model.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	raw, err := s.fetcher.RawMarkup(ctx, title)
	if err != nil {
		return nil, timeoutAsUnavailable(err)
	}
	res, err := s.sanitizer.Sanitize(raw)
	if err != nil {
		return nil, fmt.Errorf("sanitize %q: %w", title, err)
	}
	return res.Article(title, model.ArticleURL(s.cfg.BaseURL, title)), nil
}

func timeoutAsUnavailable(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, wikipedia.ErrSourceUnavailable) {
		return fmt.Errorf("%w: %w", wikipedia.ErrSourceUnavailable, err)
	}
	return err
}

// Navigate moves to title. The loading snapshot is published before any fetch.
// A failed move keeps the previous article, charges no step, sets a notice and
// returns the error.
func (s *Session) Navigate(ctx context.Context, title string) error {
	s.mu.Lock()
	next, err := s.state.BeginNavigate(title)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.setLocked(next)
	target := next.Pending

	if next.IsGoal(target) {
		won := next.ReachGoal(s.cfg.GoalPoints, nil)
		won.Current = celebration(next.GoalTitle, next.GoalURL, won.Steps)
		s.setLocked(won)
		s.events.AddEvent(&model.GameEvent{
			Type:    model.EventWon,
			Title:   won.GoalTitle,
			Summary: fmt.Sprintf("%d steps, %d points", won.Steps, won.Points),
		})
		s.mu.Unlock()
		slog.Info("Goal reached", "goal", won.GoalTitle, "steps", won.Steps)
		return nil
	}
	gen := s.gen
	s.mu.Unlock()

	article, err := s.load(ctx, target)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return ErrSessionReset
	}
	if err != nil {
		s.setLocked(s.state.FailNavigate(fmt.Sprintf("Could not open %q. Try another link.", target)))
		s.events.AddEvent(&model.GameEvent{Type: model.EventFailed, Title: target, Summary: err.Error()})
		slog.Warn("Navigation failed", "target", target, "error", err)
		return err
	}

	advanced := s.state.Advance(article)
	s.setLocked(advanced)
	s.events.AddEvent(&model.GameEvent{
		Type:    model.EventNavigate,
		Title:   article.Title,
		Summary: fmt.Sprintf("step %d", advanced.Steps),
	})
	return nil
}

// Restart resets the session to a fresh, not-started game from any phase.
// A fetch still in flight is discarded when it resolves.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.events.Reset()
	s.setLocked(State{})
	slog.Info("Game restarted")
}

// celebration is the fixed display shown once the goal is reached.
func celebration(goalTitle, goalURL string, steps int) *model.Article {
	noun := "steps"
	if steps == 1 {
		noun = "step"
	}
	return &model.Article{
		Title: goalTitle,
		URL:   goalURL,
		Content: fmt.Sprintf(`<div class="wikigame-won"><h2>You found %s!</h2><p>Reached in %d %s.</p></div>`,
			html.EscapeString(goalTitle), steps, noun),
		Links:   []string{},
		Summary: "Goal reached",
	}
}
