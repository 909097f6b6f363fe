package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	emergencyDomain "github.com/medmarket/phiguard/internal/emergency/domain"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

const grantKeyPrefix = "phiguard:emergency:"

// RedisGrantStore keeps grants as JSON values with a TTL matching their expiry.
type RedisGrantStore struct {
	client redis.Cmdable
	now    func() time.Time
}

// NewRedisGrantStore creates a store backed by client.
func NewRedisGrantStore(client redis.Cmdable) *RedisGrantStore {
	return &RedisGrantStore{client: client, now: time.Now}
}

// Save writes grant with SET EX. An already expired grant is not stored.
func (r *RedisGrantStore) Save(ctx context.Context, grant *emergencyDomain.Grant) error {
	ttl := grant.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if ttl < time.Second {
		ttl = time.Second
	}

	value, err := json.Marshal(grant)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal emergency grant")
	}
	if err := r.client.Set(ctx, grantRedisKey(grant.Grantee, grant.Resource), value, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "failed to store emergency grant")
	}
	return nil
}

// Find returns the grant for grantee on resource, or nil when none is stored.
func (r *RedisGrantStore) Find(ctx context.Context, grantee, resource string) (*emergencyDomain.Grant, error) {
	value, err := r.client.Get(ctx, grantRedisKey(grantee, resource)).Bytes()
	if err != nil {
		if apperrors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to load emergency grant")
	}

	var grant emergencyDomain.Grant
	if err := json.Unmarshal(value, &grant); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal emergency grant")
	}
	return &grant, nil
}

// grantRedisKey length-prefixes the grantee so ':' inside identifiers cannot collide.
func grantRedisKey(grantee, resource string) string {
	return grantKeyPrefix + strconv.Itoa(len(grantee)) + ":" + grantee + ":" + resource
}
