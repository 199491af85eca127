// Package memory provides the in-memory player record store used by unit
// tests and single-process deployments without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"helix/internal/player"
	id "helix/pkg/domain"
	"helix/pkg/platform/sentinel"
)

// Store keeps player records in a mutex-guarded map. Records handed out are
// clones so callers never alias internal state.
type Store struct {
	mu      sync.RWMutex
	records map[id.UserID]*player.Record
}

func New() *Store {
	return &Store{records: make(map[id.UserID]*player.Record)}
}

func (s *Store) Get(ctx context.Context, userID id.UserID) (*player.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *Store) Ensure(ctx context.Context, userID id.UserID, now time.Time) (*player.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		rec = player.NewRecord(userID, now)
		s.records[userID] = rec
	}
	return rec.Clone(), nil
}

// ApplyXP atomically bumps the XP totals behind a compare-on-prior-total
// guard. Returns sentinel.ErrConflict when the stored total no longer equals
// prior, which forces the vault to re-read and re-check monotonicity.
func (s *Store) ApplyXP(ctx context.Context, userID id.UserID, prior, delta int64, level, tier int, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if rec.XPTotal != prior {
		return sentinel.ErrConflict
	}
	rec.XPTotal += delta
	rec.XPLifetime += delta
	rec.Level = level
	rec.SkillTier = tier
	rec.UpdatedAt = now
	return nil
}

func (s *Store) SetStreak(ctx context.Context, userID id.UserID, current, longest int, lastActiveAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	rec.CurrentStreak = current
	rec.LongestStreak = longest
	t := lastActiveAt
	rec.LastActiveAt = &t
	rec.UpdatedAt = lastActiveAt
	return nil
}

func (s *Store) SetSnapshot(ctx context.Context, userID id.UserID, profile player.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	rec.DNA = profile
	rec.UpdatedAt = profile.ComputedAt
	return nil
}

func (s *Store) Archive(ctx context.Context, userID id.UserID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	rec.Archived = true
	rec.UpdatedAt = now
	return nil
}
