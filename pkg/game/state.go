package game

import (
	"fmt"

	"wikigame/pkg/model"
)

// Phase is the lifecycle position of a game.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseLoading
	PhaseReady
	PhaseWon
)

var phaseNames = [...]string{"not_started", "loading", "ready", "won"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// State is the value of one game. Transitions return a new State and never
// mutate the receiver; the zero value is a game that has not started.
type State struct {
	Phase     Phase
	GoalTitle string
	GoalURL   string
	// Current is the displayed article. While loading it still holds the
	// previous article so a failed move can fall back to it.
	Current *model.Article
	Pending string // Target being loaded
	Steps   int
	Points  int
	Started bool
	Notice  string // Transient "action failed" message
}

// BeginStart enters loading for a fresh game.
func (s State) BeginStart() (State, error) {
	if s.Phase != PhaseNotStarted {
		return s, ErrAlreadyStarted
	}
	return State{Phase: PhaseLoading}, nil
}

// CompleteStart installs the goal and the first article.
func (s State) CompleteStart(goal model.PageRef, start *model.Article) State {
	return State{
		Phase:     PhaseReady,
		GoalTitle: goal.Title,
		GoalURL:   goal.URL,
		Current:   start,
		Started:   true,
	}
}

// AbortStart discards a start that could not complete.
func (s State) AbortStart() State {
	return State{}
}

// BeginNavigate enters loading for a move to title.
func (s State) BeginNavigate(title string) (State, error) {
	switch s.Phase {
	case PhaseNotStarted:
		return s, ErrNotStarted
	case PhaseLoading:
		return s, ErrBusy
	case PhaseWon:
		return s, ErrGameOver
	}
	title = model.DisplayTitle(title)
	if title == "" {
		return s, ErrEmptyTitle
	}
	s.Phase = PhaseLoading
	s.Pending = title
	s.Notice = ""
	return s, nil
}

// IsGoal reports whether title names the goal.
func (s State) IsGoal(title string) bool {
	return model.SameArticle(title, s.GoalTitle)
}

// Advance completes a move with the fetched article.
func (s State) Advance(article *model.Article) State {
	s.Phase = PhaseReady
	s.Current = article
	s.Pending = ""
	s.Steps++
	return s
}

// ReachGoal completes the winning move, awarding points once.
func (s State) ReachGoal(award int, display *model.Article) State {
	s.Phase = PhaseWon
	s.Current = display
	s.Pending = ""
	s.Steps++
	s.Points += award
	return s
}

// FailNavigate abandons a move: previous article kept, no step charged.
func (s State) FailNavigate(notice string) State {
	s.Phase = PhaseReady
	s.Pending = ""
	s.Notice = notice
	return s
}
