// Package clock provides the wall-clock source and the day-boundary arithmetic
// every streak decision depends on. All day deltas are computed by truncating
// both instants to midnight in a single configured reference timezone; two
// writes from the same reference-zone day always truncate equally.
package clock

import (
	"math"
	"time"

	"helix/pkg/domerr"
)

// Clock is the time source injected into services. The reference timezone is
// fixed at construction and never changes at runtime.
type Clock interface {
	Now() time.Time
	// SameCalendarDay reports whether a and b fall on the same calendar day in
	// the reference timezone.
	SameCalendarDay(a, b time.Time) bool
	// HoursBetween returns the signed fractional hours from a to b.
	HoursBetween(a, b time.Time) float64
	// DayDelta returns the whole calendar days from a to b, where each instant
	// is first truncated to reference-zone midnight. DayDelta(t, t) == 0 and
	// the function is monotone in its second argument.
	DayDelta(a, b time.Time) int
	// Midnight truncates t to midnight in the reference timezone.
	Midnight(t time.Time) time.Time
	// Location exposes the reference timezone for validity-window math.
	Location() *time.Location
}

// Reference is the production Clock. The now function is injectable so tests
// can pin time without a separate fake type.
type Reference struct {
	loc *time.Location
	now func() time.Time
}

// Option configures a Reference clock.
type Option func(*Reference)

// WithNowFunc overrides the wall-clock source. Intended for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(c *Reference) {
		if now != nil {
			c.now = now
		}
	}
}

// New builds a Reference clock for the named IANA timezone.
// Errors: CodeConfigInvalid when the zone is empty or unknown; an unset
// timezone is a startup error, never a runtime fallback.
func New(tz string, opts ...Option) (*Reference, error) {
	if tz == "" {
		return nil, domerr.New(domerr.CodeConfigInvalid, "reference timezone is required")
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, domerr.Wrap(err, domerr.CodeConfigInvalid, "unknown reference timezone")
	}
	c := &Reference{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Reference) Now() time.Time {
	return c.now()
}

func (c *Reference) Location() *time.Location {
	return c.loc
}

func (c *Reference) Midnight(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

func (c *Reference) SameCalendarDay(a, b time.Time) bool {
	return c.Midnight(a).Equal(c.Midnight(b))
}

func (c *Reference) HoursBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours()
}

func (c *Reference) DayDelta(a, b time.Time) int {
	// Rounding absorbs DST days that are 23 or 25 hours long.
	return int(math.Round(c.Midnight(b).Sub(c.Midnight(a)).Hours() / 24))
}
