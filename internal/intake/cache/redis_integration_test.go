//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hydration/internal/intake/cache"
	"hydration/internal/intake/models"
	id "hydration/pkg/domain"
	"hydration/pkg/testutil/containers"
)

type RedisSummaryCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisSummaryCache
}

func TestRedisSummaryCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSummaryCacheSuite))
}

func (s *RedisSummaryCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = cache.NewRedisSummaryCache(s.redis.Client, time.Minute)
}

func (s *RedisSummaryCacheSuite) TearDownSuite() {
	s.redis.Close()
}

func (s *RedisSummaryCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSummaryCacheSuite) TestRoundTripAndInvalidate() {
	ctx := context.Background()
	userID := id.NewUserID()

	_, ok, err := s.cache.Get(ctx, userID, "2024-06-15")
	s.Require().NoError(err)
	s.False(ok)

	summary := models.NewDailySummary("2024-06-15", 750, 3, 2000)
	s.Require().NoError(s.cache.Set(ctx, userID, summary))

	got, ok, err := s.cache.Get(ctx, userID, "2024-06-15")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(summary, got)

	ttl, err := s.redis.Client.TTL(ctx, "hydration:summary:"+userID.String()+":2024-06-15").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	s.Require().NoError(s.cache.Invalidate(ctx, userID, "2024-06-15"))
	_, ok, err = s.cache.Get(ctx, userID, "2024-06-15")
	s.Require().NoError(err)
	s.False(ok)
}
