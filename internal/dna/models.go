// Package dna aggregates heterogeneous performance events into the five-axis
// player profile. Refresh is the only writer of the snapshot; everything else
// reads the last computed value.
package dna

import (
	"time"

	"github.com/google/uuid"

	"helix/internal/player"
	id "helix/pkg/domain"
)

// DrillWindow is the number of recent drills feeding the accuracy axis.
const DrillWindow = 50

// recencyDecay is the per-position weight decay over the drill window. The
// most recent drill weighs 1.00, the 50th weighs 0.51, anything older weighs
// nothing.
const recencyDecay = 0.01

// DrillSample is one drill outcome as the training silo reports it.
type DrillSample struct {
	ID        uuid.UUID
	UserID    id.UserID
	DrillID   id.DrillID
	Accuracy  float64
	CreatedAt time.Time
}

// AxisInput is the latest raw reading for one externally sourced axis.
// Aggression carries its speed score in Secondary; wealth and luck use Value
// alone.
type AxisInput struct {
	UserID    id.UserID
	Axis      player.Axis
	Value     float64
	Secondary *float64
	UpdatedAt time.Time
}

// AxisDelta is the before/after movement of a single axis.
type AxisDelta struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Delta float64 `json:"delta"`
}

// Delta is the per-axis movement between two snapshots, for change-feed
// consumers. Pure data.
type Delta struct {
	Axes      map[player.Axis]AxisDelta `json:"axes"`
	Composite AxisDelta                 `json:"composite"`
}

// Diff computes the movement from prev to next. It never reads stored state.
func Diff(prev, next player.Profile) Delta {
	axes := make(map[player.Axis]AxisDelta, len(player.Axes()))
	for _, a := range player.Axes() {
		from, to := prev.Axis(a), next.Axis(a)
		axes[a] = AxisDelta{From: from, To: to, Delta: to - from}
	}
	return Delta{
		Axes:      axes,
		Composite: AxisDelta{From: prev.Composite, To: next.Composite, Delta: next.Composite - prev.Composite},
	}
}
