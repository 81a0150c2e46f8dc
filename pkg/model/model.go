package model

import (
	"time"
)

// Article is one fetched and sanitized encyclopedia page.
// It is built once per fetch and replaced, never edited, on navigation.
type Article struct {
	Title   string   `json:"title"`   // Display form ("Albert Einstein")
	URL     string   `json:"url"`     // Absolute article URL
	Content string   `json:"content"` // Sanitized article markup
	Infobox string   `json:"infobox"` // Sanitized infobox markup, "" when the page has none
	Links   []string `json:"links"`   // Distinct linked article titles in document order
	Summary string   `json:"summary"` // Plain-text lead paragraph
}

// PageRef identifies an article without its content.
type PageRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// NavigationCandidate is a link offered as the next move.
type NavigationCandidate struct {
	DisplayTitle   string `json:"display_title"`
	CanonicalTitle string `json:"canonical_title"`
}

// Game event types.
const (
	EventStart    = "start"
	EventNavigate = "navigate"
	EventFailed   = "failed"
	EventWon      = "won"
	EventRestart  = "restart"
)

// GameEvent is one entry of a session's event trail.
type GameEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
}
