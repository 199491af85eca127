// Package memory provides the in-memory vault store used by unit tests and
// database-less deployments. It composes the shared in-memory player store so
// ledger appends and total bumps observe the same record set.
package memory

import (
	"context"
	"sync"
	"time"

	playermem "helix/internal/player/store/memory"
	"helix/internal/vault"
	id "helix/pkg/domain"
)

type Store struct {
	players *playermem.Store

	mu      sync.RWMutex
	ledger  map[id.UserID][]vault.LedgerEntry
	alerts  []vault.SecurityAlert
	blocked map[string]time.Time
}

func New(players *playermem.Store) *Store {
	return &Store{
		players: players,
		ledger:  make(map[id.UserID][]vault.LedgerEntry),
		blocked: make(map[string]time.Time),
	}
}

// ApplyGrant bumps the totals behind the prior-total guard, then appends the
// ledger entry. The guard failing leaves the ledger untouched.
func (s *Store) ApplyGrant(ctx context.Context, entry vault.LedgerEntry, newLevel, newTier int) error {
	if err := s.players.ApplyXP(ctx, entry.UserID, entry.PriorTotal, entry.Delta, newLevel, newTier, entry.Timestamp); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger[entry.UserID] = append(s.ledger[entry.UserID], entry)
	return nil
}

func (s *Store) History(ctx context.Context, userID id.UserID, limit int) ([]vault.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.ledger[userID]
	out := make([]vault.LedgerEntry, 0, min(limit, len(entries)))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (s *Store) AppendAlert(ctx context.Context, alert vault.SecurityAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *Store) Alerts(ctx context.Context, userID *id.UserID, limit int) ([]vault.SecurityAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vault.SecurityAlert, 0, limit)
	for i := len(s.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		if userID != nil && s.alerts[i].UserID != *userID {
			continue
		}
		out = append(out, s.alerts[i])
	}
	return out, nil
}

func (s *Store) IsBlocked(ctx context.Context, source string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blocked[source]
	return ok, nil
}

func (s *Store) Block(ctx context.Context, source string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocked[source]; !ok {
		s.blocked[source] = at
	}
	return nil
}
