package dna

import (
	"context"
	"time"

	"helix/internal/player"
	id "helix/pkg/domain"
)

// SourceStore persists the raw event inputs the aggregator reads. Append-only
// for drills; last-write-wins for axis inputs.
type SourceStore interface {
	// AppendDrill records one drill outcome.
	AppendDrill(ctx context.Context, sample DrillSample) error

	// RecentDrills returns up to limit drills, most recent first.
	RecentDrills(ctx context.Context, userID id.UserID, limit int) ([]DrillSample, error)

	// SetAxisInput upserts the latest reading for an externally sourced axis.
	SetAxisInput(ctx context.Context, input AxisInput) error

	// AxisInputs returns the latest reading per axis. Axes with no reading
	// are absent from the map.
	AxisInputs(ctx context.Context, userID id.UserID) (map[player.Axis]AxisInput, error)
}

// Players is the slice of the player store the aggregator needs. The
// aggregator is the only writer of the DNA snapshot.
type Players interface {
	Ensure(ctx context.Context, userID id.UserID, now time.Time) (*player.Record, error)
	SetSnapshot(ctx context.Context, userID id.UserID, profile player.Profile) error
	Archive(ctx context.Context, userID id.UserID, now time.Time) error
}

// SnapshotCache is an optional read-through cache over computed profiles.
// A nil cache is a valid configuration.
type SnapshotCache interface {
	Get(ctx context.Context, userID id.UserID) (*player.Profile, error)
	Set(ctx context.Context, userID id.UserID, profile player.Profile) error
	Invalidate(ctx context.Context, userID id.UserID) error
}
