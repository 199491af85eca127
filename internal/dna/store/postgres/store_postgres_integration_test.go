//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"helix/internal/dna"
	dnapg "helix/internal/dna/store/postgres"
	"helix/internal/player"
	id "helix/pkg/domain"
	"helix/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *dnapg.Store
	userID   id.UserID
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = dnapg.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "drill_samples", "axis_inputs"))
	s.userID = id.NewUserID()
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) TestRecentDrillsMostRecentFirst() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.AppendDrill(ctx, dna.DrillSample{
			ID:        uuid.New(),
			UserID:    s.userID,
			DrillID:   id.NewDrillID(),
			Accuracy:  0.5 + float64(i)*0.1,
			CreatedAt: s.now.Add(time.Duration(i) * time.Minute),
		}))
	}

	drills, err := s.store.RecentDrills(ctx, s.userID, 10)
	s.Require().NoError(err)
	s.Require().Len(drills, 3)
	s.InDelta(0.7, drills[0].Accuracy, 1e-9)
	s.InDelta(0.5, drills[2].Accuracy, 1e-9)
}

func (s *PostgresStoreSuite) TestRecentDrillsHonorsLimit() {
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.AppendDrill(ctx, dna.DrillSample{
			ID:        uuid.New(),
			UserID:    s.userID,
			DrillID:   id.NewDrillID(),
			Accuracy:  0.9,
			CreatedAt: s.now.Add(time.Duration(i) * time.Second),
		}))
	}

	drills, err := s.store.RecentDrills(ctx, s.userID, 2)
	s.Require().NoError(err)
	s.Len(drills, 2)
}

func (s *PostgresStoreSuite) TestAxisInputUpsert() {
	ctx := context.Background()

	speed := 0.5
	s.Require().NoError(s.store.SetAxisInput(ctx, dna.AxisInput{
		UserID:    s.userID,
		Axis:      player.AxisAggression,
		Value:     0.4,
		Secondary: &speed,
		UpdatedAt: s.now,
	}))
	// Second write for the same axis replaces, not duplicates.
	s.Require().NoError(s.store.SetAxisInput(ctx, dna.AxisInput{
		UserID:    s.userID,
		Axis:      player.AxisAggression,
		Value:     0.6,
		UpdatedAt: s.now.Add(time.Minute),
	}))
	s.Require().NoError(s.store.SetAxisInput(ctx, dna.AxisInput{
		UserID:    s.userID,
		Axis:      player.AxisWealth,
		Value:     0.7,
		UpdatedAt: s.now,
	}))

	inputs, err := s.store.AxisInputs(ctx, s.userID)
	s.Require().NoError(err)
	s.Require().Len(inputs, 2)
	s.InDelta(0.6, inputs[player.AxisAggression].Value, 1e-9)
	s.Nil(inputs[player.AxisAggression].Secondary)
	s.InDelta(0.7, inputs[player.AxisWealth].Value, 1e-9)
}

func (s *PostgresStoreSuite) TestAxisInputsEmptyForUnknownUser() {
	inputs, err := s.store.AxisInputs(context.Background(), id.NewUserID())
	s.Require().NoError(err)
	s.Empty(inputs)
}
