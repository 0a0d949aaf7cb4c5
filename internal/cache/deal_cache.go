package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/splicerhq/groupbuy_api/internal/models"
)

// DealStatsCache keeps per-deal progress stats in Redis so the deal detail
// page does not recompute aggregates on every request. Entries are
// invalidated whenever a join, leave or cancel mutates the deal.
type DealStatsCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewDealStatsCache creates a DealStatsCache with the given TTL.
func NewDealStatsCache(redis *RedisClient, ttl time.Duration) *DealStatsCache {
	return &DealStatsCache{redis: redis, ttl: ttl}
}

func (c *DealStatsCache) key(dealID string) string {
	return fmt.Sprintf("deal:stats:%s", dealID)
}

// Set stores deal stats under deal:stats:{dealId}.
func (c *DealStatsCache) Set(ctx context.Context, stats *models.GroupDealStats) error {
	jsonData, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal deal stats: %w", err)
	}
	return c.redis.Set(ctx, c.key(stats.DealID), string(jsonData), c.ttl)
}

// Get retrieves cached stats for a deal. Returns (nil, nil) on a cache miss.
func (c *DealStatsCache) Get(ctx context.Context, dealID string) (*models.GroupDealStats, error) {
	jsonData, err := c.redis.Get(ctx, c.key(dealID))
	if err != nil {
		if IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}

	var stats models.GroupDealStats
	if err := json.Unmarshal([]byte(jsonData), &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deal stats: %w", err)
	}
	return &stats, nil
}

// Invalidate drops the cached stats for a deal.
func (c *DealStatsCache) Invalidate(ctx context.Context, dealID string) error {
	return c.redis.Delete(ctx, c.key(dealID))
}
