package player

import (
	"context"
	"time"

	id "helix/pkg/domain"
)

// Store persists player records. Implementations are pure I/O: the services
// own every derivation (levels, tiers, axis math) and the store only moves
// field groups. Each mutator touches exactly the fields its owning component
// is allowed to write.
type Store interface {
	// Get returns the record or sentinel.ErrNotFound.
	Get(ctx context.Context, userID id.UserID) (*Record, error)

	// Ensure returns the record, creating it when this is the first authorized
	// write for the user.
	Ensure(ctx context.Context, userID id.UserID, now time.Time) (*Record, error)

	// SetStreak writes the streak fields. Owned by the streak oracle.
	SetStreak(ctx context.Context, userID id.UserID, current, longest int, lastActiveAt time.Time) error

	// SetSnapshot writes the DNA snapshot. Owned by the aggregator.
	SetSnapshot(ctx context.Context, userID id.UserID, profile Profile) error

	// Archive marks the record archived on an erasure request. Records are
	// never deleted.
	Archive(ctx context.Context, userID id.UserID, now time.Time) error
}
