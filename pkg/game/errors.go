package game

import "errors"

var (
	ErrNotStarted     = errors.New("game not started")
	ErrAlreadyStarted = errors.New("game already started")
	ErrBusy           = errors.New("an article is still loading")
	ErrGameOver       = errors.New("goal already reached")
	ErrEmptyTitle     = errors.New("empty target title")
	// ErrSessionReset is returned by an action whose result arrived after a restart.
	ErrSessionReset = errors.New("session was restarted")
	// ErrNoDistinctStart means every random start article collided with the goal.
	ErrNoDistinctStart = errors.New("could not pick a start article distinct from the goal")
)
