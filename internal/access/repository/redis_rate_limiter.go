package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/medmarket/phiguard/internal/errors"
)

const rateLimitKeyPrefix = "phiguard:ratelimit:"

// RedisRateLimiter is a fixed-window counter shared by every instance.
type RedisRateLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
}

// NewRedisRateLimiter allows limit requests per window for each key.
func NewRedisRateLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, window: window}
}

// Allow increments the counter for key and reports whether it is within the limit.
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := incrementWindow(ctx, r.client, rateLimitKeyPrefix+key, r.window)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to increment rate limit counter")
	}
	return n <= int64(r.limit), nil
}
