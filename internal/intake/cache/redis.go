// Package cache keeps daily intake summaries in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hydration/internal/intake/models"
	id "hydration/pkg/domain"
)

const keyPrefix = "hydration:summary:"

// RedisSummaryCache stores one JSON summary per user and UTC date.
type RedisSummaryCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisSummaryCache(client redis.Cmdable, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func key(userID id.UserID, date string) string {
	return keyPrefix + userID.String() + ":" + date
}

// Get returns the cached summary and whether it was present.
func (c *RedisSummaryCache) Get(ctx context.Context, userID id.UserID, date string) (*models.DailySummary, bool, error) {
	raw, err := c.client.Get(ctx, key(userID, date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get summary: %w", err)
	}
	var s models.DailySummary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, fmt.Errorf("decode summary: %w", err)
	}
	return &s, true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, userID id.UserID, summary *models.DailySummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := c.client.Set(ctx, key(userID, summary.Date), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("set summary: %w", err)
	}
	return nil
}

func (c *RedisSummaryCache) Invalidate(ctx context.Context, userID id.UserID, date string) error {
	if err := c.client.Del(ctx, key(userID, date)).Err(); err != nil {
		return fmt.Errorf("invalidate summary: %w", err)
	}
	return nil
}
