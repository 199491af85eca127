package coordinator

import (
	id "helix/pkg/domain"
)

// DrillCompletion is the inbound training event.
type DrillCompletion struct {
	UserID        id.UserID
	DrillID       id.DrillID
	Accuracy      float64
	GTOCompliance float64
	XPAmount      int64
}

// BankrollUpdate carries the latest wealth reading from the bankroll silo.
type BankrollUpdate struct {
	UserID id.UserID
	Wealth float64
}

// ReputationUpdate carries the latest luck/rep reading from the social silo.
type ReputationUpdate struct {
	UserID id.UserID
	Luck   float64
}

// ArcadeResult carries aggression inputs from the arcade silo.
type ArcadeResult struct {
	UserID         id.UserID
	BaseAggression float64
	SpeedScore     float64
	XPAmount       int64
}

// ManualGrant is an admin-reviewed XP addition. It bypasses the mastery gate
// but never the monotonicity law.
type ManualGrant struct {
	UserID id.UserID
	Amount int64
	Source id.XPSource
}

// DrillOutcome reports one full drill-completion sequence.
type DrillOutcome struct {
	Granted       bool
	NewTotal      int64
	GateScore     *float64
	Reason        string
	StreakAction  string
	CurrentStreak int
	Multiplier    float64
	Composite     float64
}
