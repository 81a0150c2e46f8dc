// Package apisession keeps one game per API client. Clients identify
// themselves with an opaque session ID (a UUID minted by the server on first
// contact and echoed back in a header or cookie).
package apisession

import (
	"context"
	"sync"
	"time"
)

// cleanupInterval is how often Get() triggers lazy eviction of expired entries.
const cleanupInterval = 100

type entry[T any] struct {
	value      *T
	lastAccess time.Time
}

// Store is a typed, thread-safe session store. Each unique session ID maps to
// one instance of T, created on first access via the newFn factory.
type Store[T any] struct {
	mu       sync.Mutex
	entries  map[string]*entry[T]
	ttl      time.Duration
	newFn    func(id string) *T
	getCalls int
	now      func() time.Time
}

// New creates a Store that evicts sessions inactive longer than ttl.
// newFn is called to initialise state when a session ID is seen for the first time.
func New[T any](ttl time.Duration, newFn func(id string) *T) *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		ttl:     ttl,
		newFn:   newFn,
		now:     time.Now,
	}
}

// Get returns the state for the given session, creating it if needed.
// Each call refreshes the session's last-access timestamp.
func (s *Store[T]) Get(id string) *T {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++
	if s.getCalls%cleanupInterval == 0 {
		s.cleanupLocked()
	}

	e, ok := s.entries[id]
	if !ok {
		e = &entry[T]{value: s.newFn(id)}
		s.entries[id] = e
	}
	e.lastAccess = s.now()
	return e.value
}

// Lookup returns an existing session without creating one.
func (s *Store[T]) Lookup(id string) (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	e.lastAccess = s.now()
	return e.value, true
}

// Delete drops a session.
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Cleanup evicts all sessions that have been inactive longer than the TTL
// and reports how many were removed.
func (s *Store[T]) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleanupLocked()
}

func (s *Store[T]) cleanupLocked() int {
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, e := range s.entries {
		if e.lastAccess.Before(cutoff) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Janitor runs Cleanup every interval until ctx is done.
func (s *Store[T]) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// Len returns the number of active sessions.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
