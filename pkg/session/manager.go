package session

import (
	"sync"
	"time"

	"wikigame/pkg/logging"
	"wikigame/pkg/model"
)

// maxEvents caps the in-memory trail; the events log keeps everything.
const maxEvents = 500

// Manager holds the event trail of one game.
type Manager struct {
	mu     sync.RWMutex
	events []model.GameEvent
}

// NewManager creates a new session manager.
func NewManager() *Manager {
	return &Manager{}
}

// AddEvent adds a structured event to the trail and the events log.
func (m *Manager) AddEvent(event *model.GameEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	m.events = append(m.events, *event)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}

	logging.LogEvent(event)
}

// Events returns a copy of the trail, oldest first.
func (m *Manager) Events() []model.GameEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.GameEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Len returns the number of events in the trail.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// Reset clears the trail. The restart itself is still written to the events log.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = nil
	logging.LogEvent(&model.GameEvent{Timestamp: time.Now(), Type: model.EventRestart, Title: "-"})
}
