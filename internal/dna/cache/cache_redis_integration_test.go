//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"helix/internal/dna/cache"
	"helix/internal/player"
	id "helix/pkg/domain"
	"helix/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.Redis
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = cache.NewRedis(s.redis.Client)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) profile() player.Profile {
	return player.NewProfile(map[player.Axis]float64{
		player.AxisAccuracy:   0.8,
		player.AxisGrit:       0.6,
		player.AxisAggression: 0.4,
		player.AxisWealth:     0.5,
		player.AxisLuck:       0.5,
	}, time.Now().UTC().Truncate(time.Millisecond))
}

func (s *RedisCacheSuite) TestMissReturnsNil() {
	got, err := s.cache.Get(context.Background(), id.NewUserID())
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *RedisCacheSuite) TestSetGetRoundTrip() {
	ctx := context.Background()
	userID := id.NewUserID()
	profile := s.profile()

	s.Require().NoError(s.cache.Set(ctx, userID, profile))

	got, err := s.cache.Get(ctx, userID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.InDelta(profile.Composite, got.Composite, 1e-9)
	s.InDelta(0.8, got.Accuracy, 1e-9)
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()
	userID := id.NewUserID()

	s.Require().NoError(s.cache.Set(ctx, userID, s.profile()))
	s.Require().NoError(s.cache.Invalidate(ctx, userID))

	got, err := s.cache.Get(ctx, userID)
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	userID := id.NewUserID()
	short := cache.NewRedis(s.redis.Client, cache.WithTTL(time.Second))

	s.Require().NoError(short.Set(ctx, userID, s.profile()))

	s.Require().Eventually(func() bool {
		got, err := short.Get(ctx, userID)
		return err == nil && got == nil
	}, 5*time.Second, 250*time.Millisecond)
}
