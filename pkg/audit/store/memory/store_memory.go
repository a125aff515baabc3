// Package memory provides an in-memory event store for development and tests.
package memory

import (
	"context"
	"sync"

	"audittrail/pkg/audit"
)

// Store keeps events in arrival order behind a RW mutex.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Append records one event.
func (s *Store) Append(_ context.Context, ev audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// ListRecent returns up to limit events, most recent first.
func (s *Store) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.events)
	if limit > n {
		limit = n
	}
	out := make([]audit.Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// Count returns the number of stored events.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Clear removes all stored events (test helper).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
