//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"helix/internal/player"
	playerpg "helix/internal/player/store/postgres"
	id "helix/pkg/domain"
	"helix/pkg/platform/sentinel"
	"helix/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *playerpg.Store
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
	s.store = playerpg.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "player_records"))
	s.userID = id.NewUserID()
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) TestGetUnknownUser() {
	_, err := s.store.Get(context.Background(), s.userID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestEnsureIsIdempotent() {
	ctx := context.Background()

	rec, err := s.store.Ensure(ctx, s.userID, s.now)
	s.Require().NoError(err)
	s.Equal(int64(0), rec.XPTotal)
	s.Equal(1, rec.Level)

	again, err := s.store.Ensure(ctx, s.userID, s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(rec.UserID, again.UserID)
}

func (s *PostgresStoreSuite) TestSetStreak() {
	ctx := context.Background()
	_, err := s.store.Ensure(ctx, s.userID, s.now)
	s.Require().NoError(err)

	s.Require().NoError(s.store.SetStreak(ctx, s.userID, 7, 21, s.now))

	rec, err := s.store.Get(ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(7, rec.CurrentStreak)
	s.Equal(21, rec.LongestStreak)
	s.Require().NotNil(rec.LastActiveAt)
	s.True(rec.LastActiveAt.Equal(s.now))
}

func (s *PostgresStoreSuite) TestSetSnapshot() {
	ctx := context.Background()
	_, err := s.store.Ensure(ctx, s.userID, s.now)
	s.Require().NoError(err)

	profile := player.NewProfile(map[player.Axis]float64{
		player.AxisAccuracy:   0.8,
		player.AxisGrit:       0.6,
		player.AxisAggression: 0.4,
		player.AxisWealth:     0.5,
		player.AxisLuck:       0.5,
	}, s.now)
	s.Require().NoError(s.store.SetSnapshot(ctx, s.userID, profile))

	rec, err := s.store.Get(ctx, s.userID)
	s.Require().NoError(err)
	s.InDelta(profile.Composite, rec.DNA.Composite, 1e-9)
	s.InDelta(0.8, rec.DNA.Accuracy, 1e-9)
}

func (s *PostgresStoreSuite) TestArchive() {
	ctx := context.Background()
	_, err := s.store.Ensure(ctx, s.userID, s.now)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Archive(ctx, s.userID, s.now))

	rec, err := s.store.Get(ctx, s.userID)
	s.Require().NoError(err)
	s.True(rec.Archived)
}
