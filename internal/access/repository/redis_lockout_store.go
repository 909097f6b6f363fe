package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/medmarket/phiguard/internal/errors"
)

const (
	lockoutFailuresKeyPrefix = "phiguard:lockout:failures:"
	lockoutLockKeyPrefix     = "phiguard:lockout:lock:"
)

// RedisLockoutStore keeps failure counters and locks in Redis so every
// instance sees the same lockout state.
type RedisLockoutStore struct {
	client redis.Cmdable
	window time.Duration
}

// NewRedisLockoutStore counts failures within window.
func NewRedisLockoutStore(client redis.Cmdable, window time.Duration) *RedisLockoutStore {
	return &RedisLockoutStore{client: client, window: window}
}

// IsLocked reports whether a lock key exists for key.
func (r *RedisLockoutStore) IsLocked(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, lockoutLockKeyPrefix+key).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check lockout")
	}
	return n > 0, nil
}

// RecordFailure atomically increments the failure counter for key.
func (r *RedisLockoutStore) RecordFailure(ctx context.Context, key string) (int, error) {
	n, err := incrementWindow(ctx, r.client, lockoutFailuresKeyPrefix+key, r.window)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to record access failure")
	}
	return int(n), nil
}

// Lock sets a lock key with expiry d and resets the failure counter.
func (r *RedisLockoutStore) Lock(ctx context.Context, key string, d time.Duration) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, lockoutLockKeyPrefix+key, "1", d)
		pipe.Del(ctx, lockoutFailuresKeyPrefix+key)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to lock actor")
	}
	return nil
}

// Clear removes the failure counter and lock for key.
func (r *RedisLockoutStore) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, lockoutFailuresKeyPrefix+key, lockoutLockKeyPrefix+key).Err(); err != nil {
		return apperrors.Wrap(err, "failed to clear lockout")
	}
	return nil
}
