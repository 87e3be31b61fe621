package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter keeps the sliding window in a shared sorted set per learner so
// every instance sees the same counts.
type RedisLimiter struct {
	client *redis.Client
	quota  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, quota int) *RedisLimiter {
	if quota <= 0 {
		quota = DefaultQuota
	}
	return &RedisLimiter{
		client: client,
		quota:  quota,
		window: Window,
	}
}

func (l *RedisLimiter) key(learnerID string) string {
	return "ratelimit:" + learnerID
}

func (l *RedisLimiter) Allow(ctx context.Context, learnerID string) (bool, time.Duration, error) {
	key := l.key(learnerID)
	now := time.Now()
	cutoff := now.Add(-l.window).UnixNano()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit window read: %w", err)
	}

	if countCmd.Val() >= int64(l.quota) {
		oldest, err := l.client.ZRangeWithScores(ctx, key, 0, 0).Result()
		retryAfter := l.window
		if err == nil && len(oldest) > 0 {
			expires := time.Unix(0, int64(oldest[0].Score)).Add(l.window)
			retryAfter = time.Until(expires)
			if retryAfter < 0 {
				retryAfter = 0
			}
		}
		return false, retryAfter, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	pipe = l.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit window write: %w", err)
	}
	return true, 0, nil
}
