// Package signals carries the outbound messages the identity core emits to
// other subsystems: reward multipliers, level-ups, and security alerts.
package signals

import (
	"time"

	"helix/internal/streak"
	"helix/internal/vault"
	id "helix/pkg/domain"
)

// Type names an outbound signal stream.
type Type string

const (
	TypeMultiplier    Type = "identity.multiplier"
	TypeLevelUp       Type = "identity.level_up"
	TypeSecurityAlert Type = "identity.security_alert"
)

// LevelUpNotification is emitted when a grant crosses a level threshold.
type LevelUpNotification struct {
	UserID   id.UserID `json:"user_id"`
	OldLevel int       `json:"old_level"`
	NewLevel int       `json:"new_level"`
	Rewards  []string  `json:"rewards"`
}

// Message is one outbound signal. Payload is the type-specific body; UserID
// keys per-user ordering on the wire.
type Message struct {
	Type      Type      `json:"type"`
	UserID    id.UserID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

func Multiplier(sig streak.MultiplierSignal, at time.Time) Message {
	return Message{Type: TypeMultiplier, UserID: sig.UserID, Timestamp: at, Payload: sig}
}

func LevelUp(userID id.UserID, up vault.LevelUp, at time.Time) Message {
	return Message{
		Type:   TypeLevelUp,
		UserID: userID,
		Payload: LevelUpNotification{
			UserID:   userID,
			OldLevel: up.OldLevel,
			NewLevel: up.NewLevel,
			Rewards:  up.Rewards,
		},
		Timestamp: at,
	}
}

func SecurityAlert(alert vault.SecurityAlert) Message {
	return Message{
		Type:      TypeSecurityAlert,
		UserID:    alert.UserID,
		Timestamp: alert.Timestamp,
		Payload:   alert,
	}
}
