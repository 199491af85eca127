package player

import (
	"math"
	"time"
)

// Axis enumerates the five DNA dimensions. The enum is exhaustive: iterate
// with Axes() rather than hand-rolled lists so a new axis cannot be silently
// skipped by an aggregation.
type Axis string

const (
	AxisAccuracy   Axis = "accuracy"
	AxisGrit       Axis = "grit"
	AxisAggression Axis = "aggression"
	AxisWealth     Axis = "wealth"
	AxisLuck       Axis = "luck"
)

// AxisMeta carries the static per-axis metadata. Weight and color live here,
// keyed by the enum, so no component reads weights from a second source at
// runtime.
type AxisMeta struct {
	Weight float64
	Label  string
	Color  string
}

// axisMeta is the single source of truth for composite weights. The weights
// sum to 1.
var axisMeta = map[Axis]AxisMeta{
	AxisAccuracy:   {Weight: 0.30, Label: "Accuracy", Color: "#22c55e"},
	AxisGrit:       {Weight: 0.20, Label: "Grit", Color: "#f97316"},
	AxisAggression: {Weight: 0.20, Label: "Aggression", Color: "#ef4444"},
	AxisWealth:     {Weight: 0.20, Label: "Wealth", Color: "#eab308"},
	AxisLuck:       {Weight: 0.10, Label: "Luck", Color: "#a855f7"},
}

// Axes returns the axes in canonical order.
func Axes() []Axis {
	return []Axis{AxisAccuracy, AxisGrit, AxisAggression, AxisWealth, AxisLuck}
}

// Meta returns the static metadata for an axis.
func Meta(a Axis) AxisMeta {
	return axisMeta[a]
}

// Profile is the five-axis DNA snapshot. A Profile is a value: build one,
// never mutate it in place.
//
// Invariants: every axis and the composite are in [0,1]; Composite equals the
// weighted sum of the axes rounded to four decimal places.
type Profile struct {
	Accuracy   float64   `json:"accuracy"`
	Grit       float64   `json:"grit"`
	Aggression float64   `json:"aggression"`
	Wealth     float64   `json:"wealth"`
	Luck       float64   `json:"luck"`
	Composite  float64   `json:"composite"`
	ComputedAt time.Time `json:"computed_at"`
}

// NewProfile clamps every axis into [0,1], derives the composite, and stamps
// the computation time.
func NewProfile(axes map[Axis]float64, computedAt time.Time) Profile {
	p := Profile{
		Accuracy:   Clamp01(axes[AxisAccuracy]),
		Grit:       Clamp01(axes[AxisGrit]),
		Aggression: Clamp01(axes[AxisAggression]),
		Wealth:     Clamp01(axes[AxisWealth]),
		Luck:       Clamp01(axes[AxisLuck]),
		ComputedAt: computedAt,
	}
	p.Composite = roundComposite(
		p.Accuracy*axisMeta[AxisAccuracy].Weight +
			p.Grit*axisMeta[AxisGrit].Weight +
			p.Aggression*axisMeta[AxisAggression].Weight +
			p.Wealth*axisMeta[AxisWealth].Weight +
			p.Luck*axisMeta[AxisLuck].Weight)
	return p
}

// Axis returns the value of a single axis.
func (p Profile) Axis(a Axis) float64 {
	switch a {
	case AxisAccuracy:
		return p.Accuracy
	case AxisGrit:
		return p.Grit
	case AxisAggression:
		return p.Aggression
	case AxisWealth:
		return p.Wealth
	case AxisLuck:
		return p.Luck
	}
	return 0
}

// IsZero reports whether the profile has never been computed.
func (p Profile) IsZero() bool {
	return p.ComputedAt.IsZero()
}

// Clamp01 bounds v into [0,1].
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func roundComposite(v float64) float64 {
	return math.Round(v*10000) / 10000
}
