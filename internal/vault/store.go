package vault

import (
	"context"
	"time"

	"helix/internal/player"
	id "helix/pkg/domain"
)

// Store persists the ledger, the alert log, and the caller blocklist.
// Implementations are pure I/O; every rule lives in the Service.
type Store interface {
	// ApplyGrant atomically appends the ledger entry and advances the player's
	// totals, level, and skill tier. The totals update is guarded on
	// entry.PriorTotal; a stale prior returns sentinel.ErrConflict and leaves
	// both tables untouched.
	ApplyGrant(ctx context.Context, entry LedgerEntry, newLevel, newTier int) error

	// History returns the user's ledger, most recent first.
	History(ctx context.Context, userID id.UserID, limit int) ([]LedgerEntry, error)

	// AppendAlert records a blocked mutation.
	AppendAlert(ctx context.Context, alert SecurityAlert) error

	// Alerts returns alerts most recent first. A nil userID means all users.
	Alerts(ctx context.Context, userID *id.UserID, limit int) ([]SecurityAlert, error)

	// IsBlocked reports whether a source identifier is on the blocklist.
	IsBlocked(ctx context.Context, source string) (bool, error)

	// Block adds a source identifier to the blocklist.
	Block(ctx context.Context, source string, at time.Time) error
}

// Players is the slice of the player store the vault needs: record creation
// on first grant and reads of the current totals.
type Players interface {
	Get(ctx context.Context, userID id.UserID) (*player.Record, error)
	Ensure(ctx context.Context, userID id.UserID, now time.Time) (*player.Record, error)
}
