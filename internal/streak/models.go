// Package streak derives the day-window streak state: current and longest
// streak, the named tier, the reward multiplier, and the cosmetic flame.
// Visual tiers and reward multipliers are independent derivations over the
// same counter and are never conflated.
package streak

import (
	"time"

	id "helix/pkg/domain"
)

// Action is the outcome of one tick of the day-window rule.
type Action string

const (
	ActionMaintain  Action = "maintain"
	ActionIncrement Action = "increment"
	ActionReset     Action = "reset"
)

// Tier is the named streak level. A monotone step function of CurrentStreak,
// evaluated in descending order.
type Tier string

const (
	TierNone      Tier = "none"
	TierStarted   Tier = "started"
	TierGrowing   Tier = "growing"
	TierCommitted Tier = "committed"
	TierDedicated Tier = "dedicated"
	TierLegendary Tier = "legendary"
)

// Flame is the cosmetic streak state. Three named flames over the same
// thresholds as the tiers, plus none.
type Flame string

const (
	FlameNone          Flame = "none"
	FlameBlueStarter   Flame = "blue_starter"
	FlameOrangeRoaring Flame = "orange_roaring"
	FlamePurpleInferno Flame = "purple_inferno"
)

// Streak day thresholds shared by tier, flame, and multiplier derivations.
const (
	thresholdGrowing   = 3
	thresholdCommitted = 7
	thresholdDedicated = 14
	thresholdLegendary = 30
)

// TierFor derives the named tier from the streak counter.
func TierFor(current int) Tier {
	switch {
	case current >= thresholdLegendary:
		return TierLegendary
	case current >= thresholdDedicated:
		return TierDedicated
	case current >= thresholdCommitted:
		return TierCommitted
	case current >= thresholdGrowing:
		return TierGrowing
	case current >= 1:
		return TierStarted
	}
	return TierNone
}

// MultiplierFor derives the reward multiplier. Exactly three values exist:
// 1.0 for 0-2 days, 1.5 for 3-6, 2.0 for 7 and beyond.
func MultiplierFor(current int) float64 {
	switch {
	case current >= thresholdCommitted:
		return 2.0
	case current >= thresholdGrowing:
		return 1.5
	}
	return 1.0
}

// FlameFor derives the cosmetic flame.
func FlameFor(current int) Flame {
	switch {
	case current >= thresholdLegendary:
		return FlamePurpleInferno
	case current >= thresholdCommitted:
		return FlameOrangeRoaring
	case current >= thresholdGrowing:
		return FlameBlueStarter
	}
	return FlameNone
}

// State is the derived streak view returned by Peek and Tick.
type State struct {
	UserID         id.UserID
	CurrentStreak  int
	LongestStreak  int
	LastActiveAt   *time.Time
	Tier           Tier
	Flame          Flame
	Multiplier     float64
	HoursRemaining float64
}

// TickResult reports one application of the day-window rule.
type TickResult struct {
	Action Action
	State
}

// MultiplierSignal is the payload emitted to the reward subsystem after every
// tick.
type MultiplierSignal struct {
	Source         string    `json:"source"`
	Target         string    `json:"target"`
	UserID         id.UserID `json:"user_id"`
	Multiplier     float64   `json:"multiplier"`
	Tier           Tier      `json:"tier"`
	CurrentStreak  int       `json:"current_streak"`
	HoursRemaining float64   `json:"hours_remaining"`
	ValidUntil     time.Time `json:"valid_until"`
}

// SignalSource identifies this subsystem in outbound multiplier signals.
const SignalSource = "identity.streak"

// SignalTarget is the consuming subsystem.
const SignalTarget = "rewards"
