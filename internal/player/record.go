// Package player holds the player record aggregate and the value types shared
// by the vault, the streak oracle, and the DNA aggregator. Each of those
// components mutates its own slice of the record; nothing else writes it.
package player

import (
	"time"

	id "helix/pkg/domain"
)

// Record is the authoritative per-user identity record.
//
// Invariants:
//   - XPTotal is monotonically non-decreasing across its entire history
//   - XPLifetime >= XPTotal
//   - LongestStreak >= CurrentStreak and never decreases
//   - SkillTier is in 1..10
//
// A record is created on the first authorized write and never destroyed; an
// erasure request archives it instead.
type Record struct {
	UserID        id.UserID
	XPTotal       int64
	XPLifetime    int64
	Level         int
	SkillTier     int
	CurrentStreak int
	LongestStreak int
	LastActiveAt  *time.Time
	DNA           Profile
	Archived      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewRecord builds the initial record for a first authorized write.
// CurrentStreak starts at 0: zero is reserved for users who have never been
// active; the first streak tick moves it to 1.
func NewRecord(userID id.UserID, now time.Time) *Record {
	return &Record{
		UserID:    userID,
		Level:     1,
		SkillTier: 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so in-memory stores can hand out records without
// aliasing their internal state.
func (r *Record) Clone() *Record {
	cp := *r
	if r.LastActiveAt != nil {
		t := *r.LastActiveAt
		cp.LastActiveAt = &t
	}
	return &cp
}
