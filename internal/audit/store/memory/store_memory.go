// Package memory is the in-memory audit store used by tests and the
// single-process deployment.
package memory

import (
	"context"
	"sync"

	"helix/internal/audit"
	id "helix/pkg/domain"
)

type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Store) ListByUser(_ context.Context, userID id.UserID, limit int) ([]audit.Event, error) {
	return s.filter(limit, func(e audit.Event) bool {
		return e.UserID != nil && *e.UserID == userID
	})
}

func (s *Store) ListBySubject(_ context.Context, subject string, limit int) ([]audit.Event, error) {
	return s.filter(limit, func(e audit.Event) bool { return e.Subject == subject })
}

func (s *Store) ListByAction(_ context.Context, action string, limit int) ([]audit.Event, error) {
	return s.filter(limit, func(e audit.Event) bool { return e.Action == action })
}

// filter returns matching events most recent first.
func (s *Store) filter(limit int, match func(audit.Event) bool) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for i := len(s.events) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if match(s.events[i]) {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}
