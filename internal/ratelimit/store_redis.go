package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	dErrors "custodia/pkg/domain-errors"
)

// RedisStore is a sliding-window limiter on a shared Redis instance. Each key
// is a sorted set of request timestamps scored by unix nanoseconds, so every
// service instance sees the same window.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed limiter store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

// Allow records one request for key and reports whether it fits the limit.
func (s *RedisStore) Allow(ctx context.Context, key string, limit Limit) (Result, error) {
	now := time.Now()
	cutoff := now.Add(-limit.Window)
	redisKey := s.prefix + key

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "rate limit check failed")
	}

	count := int(countCmd.Val())
	if count >= limit.Requests {
		resetAt := now.Add(limit.Window)
		if oldest := oldestCmd.Val(); len(oldest) > 0 {
			resetAt = time.Unix(0, int64(oldest[0].Score)).Add(limit.Window)
		}
		return Result{Allowed: false, Limit: limit.Requests, Remaining: 0, ResetAt: resetAt}, nil
	}

	// Member must be unique per request so same-nanosecond arrivals both count.
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()
	record := s.client.TxPipeline()
	record.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	record.Expire(ctx, redisKey, limit.Window)
	if _, err := record.Exec(ctx); err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "rate limit record failed")
	}

	return Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - count - 1,
		ResetAt:   now.Add(limit.Window),
	}, nil
}

// Reset clears the counter for a key.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "rate limit reset failed")
	}
	return nil
}
