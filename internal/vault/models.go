// Package vault owns monotonic experience-point accounting: the append-only
// XP ledger, the mastery gate, and the security-alert log. XPTotal moves in
// one direction only; every rejected mutation leaves an alert behind.
package vault

import (
	"time"

	"github.com/google/uuid"

	id "helix/pkg/domain"
	"helix/pkg/domerr"
)

// Laws is the loaded-once rule set for XP accounting. It is plain data with
// no mutators: construct it at startup, validate, and share by value.
type Laws struct {
	MinIncrement       int64
	MaxSingleIncrement int64
	GateThreshold      float64
	GateAccuracyWeight float64
	GateGTOWeight      float64
}

// DefaultLaws returns the production rule set.
func DefaultLaws() Laws {
	return Laws{
		MinIncrement:       1,
		MaxSingleIncrement: 100_000,
		GateThreshold:      0.85,
		GateAccuracyWeight: 0.6,
		GateGTOWeight:      0.4,
	}
}

// Validate rejects unusable rule sets at startup.
// Errors: CodeConfigInvalid only.
func (l Laws) Validate() error {
	if l.MinIncrement < 1 {
		return domerr.New(domerr.CodeConfigInvalid, "min increment must be at least 1")
	}
	if l.MaxSingleIncrement < l.MinIncrement {
		return domerr.New(domerr.CodeConfigInvalid, "max single increment must be >= min increment")
	}
	if l.GateThreshold <= 0 || l.GateThreshold > 1 {
		return domerr.New(domerr.CodeConfigInvalid, "gate threshold must be in (0,1]")
	}
	if l.GateAccuracyWeight < 0 || l.GateGTOWeight < 0 {
		return domerr.New(domerr.CodeConfigInvalid, "gate weights must be non-negative")
	}
	if sum := l.GateAccuracyWeight + l.GateGTOWeight; sum < 0.999 || sum > 1.001 {
		return domerr.New(domerr.CodeConfigInvalid, "gate weights must sum to 1")
	}
	return nil
}

// LedgerEntry is one append-only XP grant record.
// Invariant: NewTotal = PriorTotal + Delta and Delta >= 1.
type LedgerEntry struct {
	ID              uuid.UUID
	UserID          id.UserID
	Delta           int64
	Source          id.XPSource
	AccuracyAtGrant *float64
	GTOAtGrant      *float64
	GatePassed      bool
	PriorTotal      int64
	NewTotal        int64
	CallerSiloID    id.SiloID
	Timestamp       time.Time
}

// AlertKind classifies a blocked mutation.
type AlertKind string

const (
	AlertDecreaseAttempt    AlertKind = "decrease_attempt"
	AlertInvalidIncrement   AlertKind = "invalid_increment"
	AlertGateFailed         AlertKind = "gate_failed"
	AlertUnauthorizedCaller AlertKind = "unauthorized_caller"
)

// SecurityAlert is one append-only entry in the vault's audit trail. Alerts
// are the only record a rejected mutation leaves; rejections never raise.
type SecurityAlert struct {
	ID               uuid.UUID
	UserID           id.UserID
	Kind             AlertKind
	PriorTotal       int64
	AttemptedTotal   int64
	SourceIdentifier string
	Timestamp        time.Time
}

// GrantRequest carries one proposed XP addition.
type GrantRequest struct {
	UserID        id.UserID
	Amount        int64
	Source        id.XPSource
	Accuracy      *float64
	GTOCompliance *float64
	BypassGate    bool
	// CallerID identifies the proposing subsystem for the alert trail and the
	// auto-blocklist. Usually the authenticated silo ID.
	CallerID string
}

// GrantResult reports the outcome of AddXP. Rejections are values, not
// errors: Granted=false plus a Reason code from the error taxonomy.
type GrantResult struct {
	Granted   bool
	NewTotal  int64
	GateScore *float64
	Reason    domerr.Code
	LevelUp   *LevelUp
}

// LevelUp describes a level threshold crossing for the outbound notification.
type LevelUp struct {
	OldLevel int
	NewLevel int
	Rewards  []string
}
