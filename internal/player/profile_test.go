package player_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"helix/internal/player"
)

func TestNewProfileComposite(t *testing.T) {
	at := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	profile := player.NewProfile(map[player.Axis]float64{
		player.AxisAccuracy:   0.8,
		player.AxisGrit:       0.6,
		player.AxisAggression: 0.4,
		player.AxisWealth:     0.5,
		player.AxisLuck:       0.5,
	}, at)

	// 0.8*0.30 + 0.6*0.20 + 0.4*0.20 + 0.5*0.20 + 0.5*0.10
	assert.InDelta(t, 0.59, profile.Composite, 1e-9)
	assert.Equal(t, at, profile.ComputedAt)
}

func TestNewProfileClampsAxes(t *testing.T) {
	profile := player.NewProfile(map[player.Axis]float64{
		player.AxisAccuracy:   1.7,
		player.AxisGrit:       -0.3,
		player.AxisAggression: 0.5,
		player.AxisWealth:     0.5,
		player.AxisLuck:       0.5,
	}, time.Now())

	assert.Equal(t, 1.0, profile.Accuracy)
	assert.Equal(t, 0.0, profile.Grit)
}

func TestCompositeRoundsToFourDecimals(t *testing.T) {
	profile := player.NewProfile(map[player.Axis]float64{
		player.AxisAccuracy:   0.123456,
		player.AxisGrit:       0.654321,
		player.AxisAggression: 0.5,
		player.AxisWealth:     0.5,
		player.AxisLuck:       0.5,
	}, time.Now())

	// 0.123456*0.30 + 0.654321*0.20 + 0.5*0.20 + 0.5*0.20 + 0.5*0.10 = 0.417901
	assert.InDelta(t, 0.4179, profile.Composite, 1e-9)
}

func TestAxisWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, axis := range player.Axes() {
		sum += player.Meta(axis).Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestProfileAxisAccessor(t *testing.T) {
	profile := player.NewProfile(map[player.Axis]float64{
		player.AxisAccuracy:   0.9,
		player.AxisGrit:       0.1,
		player.AxisAggression: 0.2,
		player.AxisWealth:     0.3,
		player.AxisLuck:       0.4,
	}, time.Now())

	assert.Equal(t, 0.9, profile.Axis(player.AxisAccuracy))
	assert.Equal(t, 0.4, profile.Axis(player.AxisLuck))
}
