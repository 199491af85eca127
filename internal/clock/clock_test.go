package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helix/pkg/domerr"
)

func mustClock(t *testing.T, tz string) *Reference {
	t.Helper()
	c, err := New(tz)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("empty timezone is a config error", func(t *testing.T) {
		_, err := New("")
		require.Error(t, err)
		assert.True(t, domerr.HasCode(err, domerr.CodeConfigInvalid))
	})

	t.Run("unknown timezone is a config error", func(t *testing.T) {
		_, err := New("Mars/Olympus_Mons")
		require.Error(t, err)
		assert.True(t, domerr.HasCode(err, domerr.CodeConfigInvalid))
	})

	t.Run("valid timezone loads", func(t *testing.T) {
		c := mustClock(t, "America/New_York")
		assert.Equal(t, "America/New_York", c.Location().String())
	})
}

func TestDayDelta(t *testing.T) {
	c := mustClock(t, "UTC")

	t.Run("same instant is zero", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
		assert.Equal(t, 0, c.DayDelta(now, now))
	})

	t.Run("consecutive midnights are one day", func(t *testing.T) {
		d := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 1, c.DayDelta(d, d.AddDate(0, 0, 1)))
	})

	t.Run("23h59m across midnight is one day", func(t *testing.T) {
		// The raw-hour path would call this "same day"; the reference-midnight
		// truncation must not.
		a := time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC)
		b := time.Date(2024, 3, 11, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, 1, c.DayDelta(a, b))
	})

	t.Run("23h within one day is zero days", func(t *testing.T) {
		a := time.Date(2024, 3, 10, 0, 30, 0, 0, time.UTC)
		b := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
		assert.Equal(t, 0, c.DayDelta(a, b))
	})

	t.Run("monotone in second argument", func(t *testing.T) {
		base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		prev := c.DayDelta(base, base)
		for h := 1; h <= 24*7; h++ {
			cur := c.DayDelta(base, base.Add(time.Duration(h)*time.Hour))
			assert.GreaterOrEqual(t, cur, prev)
			prev = cur
		}
	})

	t.Run("negative when b precedes a", func(t *testing.T) {
		a := time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)
		b := time.Date(2024, 3, 8, 23, 0, 0, 0, time.UTC)
		assert.Equal(t, -2, c.DayDelta(a, b))
	})
}

func TestDayDeltaAcrossDST(t *testing.T) {
	// America/New_York springs forward 2024-03-10: that calendar day is only
	// 23 hours long. The delta must still be exactly one per calendar day.
	c := mustClock(t, "America/New_York")
	loc := c.Location()

	before := time.Date(2024, 3, 9, 20, 0, 0, 0, loc)
	after := time.Date(2024, 3, 10, 20, 0, 0, 0, loc)
	assert.Equal(t, 1, c.DayDelta(before, after))

	// Fall back 2024-11-03: a 25 hour day.
	before = time.Date(2024, 11, 2, 20, 0, 0, 0, loc)
	after = time.Date(2024, 11, 3, 20, 0, 0, 0, loc)
	assert.Equal(t, 1, c.DayDelta(before, after))
}

func TestDayDeltaIgnoresInstantZone(t *testing.T) {
	// Instants arriving in different zones must truncate identically once
	// converted to the reference zone.
	c := mustClock(t, "UTC")
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	utc := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sameInstant := utc.In(tokyo)
	assert.Equal(t, 0, c.DayDelta(utc, sameInstant))
	assert.True(t, c.SameCalendarDay(utc, sameInstant))
}

func TestSameCalendarDay(t *testing.T) {
	c := mustClock(t, "UTC")
	a := time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)
	b := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)
	assert.True(t, c.SameCalendarDay(a, b))
	assert.False(t, c.SameCalendarDay(a, b.Add(time.Second)))
}

func TestHoursBetween(t *testing.T) {
	c := mustClock(t, "UTC")
	a := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 36.5, c.HoursBetween(a, a.Add(36*time.Hour+30*time.Minute)), 1e-9)
	assert.InDelta(t, -2, c.HoursBetween(a, a.Add(-2*time.Hour)), 1e-9)
}

func TestWithNowFunc(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c, err := New("UTC", WithNowFunc(func() time.Time { return fixed }))
	require.NoError(t, err)
	assert.Equal(t, fixed, c.Now())
}
