// Package coordinator sequences the per-event identity pipeline: gate check,
// XP append, streak tick, DNA refresh, and outbound signal emission.
package coordinator

import (
	"context"

	"helix/internal/player"
	"helix/internal/streak"
	"helix/internal/vault"
	id "helix/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// XPVault is the grant surface the coordinator drives.
type XPVault interface {
	AddXP(ctx context.Context, req vault.GrantRequest) (*vault.GrantResult, error)
	ProposeTotal(ctx context.Context, userID id.UserID, newTotal int64, callerID string) (*vault.GrantResult, error)
}

// StreakOracle ticks and derives the multiplier payload.
type StreakOracle interface {
	Tick(ctx context.Context, userID id.UserID) (*streak.TickResult, error)
	Signal(ctx context.Context, userID id.UserID) (*streak.MultiplierSignal, error)
}

// DNAAggregator records raw events and recomputes the profile.
type DNAAggregator interface {
	RecordDrill(ctx context.Context, userID id.UserID, drillID id.DrillID, accuracy float64) error
	RecordAggression(ctx context.Context, userID id.UserID, base, speed float64) error
	RecordWealth(ctx context.Context, userID id.UserID, wealth float64) error
	RecordLuck(ctx context.Context, userID id.UserID, luck float64) error
	Refresh(ctx context.Context, userID id.UserID) (player.Profile, error)
	Archive(ctx context.Context, userID id.UserID) error
}
