package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/speechcoach/backend/internal/models"
)

const statsKeyPrefix = "stats:user:"

// StatsCache keeps computed user stats between writes.
type StatsCache interface {
	Get(ctx context.Context, userID uuid.UUID) (models.UserStats, bool, error)
	Set(ctx context.Context, userID uuid.UUID, stats models.UserStats) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// RedisStatsCache stores stats as JSON strings with a TTL.
type RedisStatsCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStatsCache creates a Redis-backed stats cache.
func NewRedisStatsCache(client redis.Cmdable, ttl time.Duration) *RedisStatsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStatsCache{client: client, ttl: ttl}
}

func statsKey(userID uuid.UUID) string {
	return statsKeyPrefix + userID.String()
}

// Get returns the cached stats; a miss is (zero, false, nil).
func (c *RedisStatsCache) Get(ctx context.Context, userID uuid.UUID) (models.UserStats, bool, error) {
	raw, err := c.client.Get(ctx, statsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.UserStats{}, false, nil
	}
	if err != nil {
		return models.UserStats{}, false, err
	}
	var stats models.UserStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return models.UserStats{}, false, err
	}
	return stats, true, nil
}

// Set stores stats for the configured TTL.
func (c *RedisStatsCache) Set(ctx context.Context, userID uuid.UUID, stats models.UserStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(userID), raw, c.ttl).Err()
}

// Invalidate drops the cached stats.
func (c *RedisStatsCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, statsKey(userID)).Err()
}
