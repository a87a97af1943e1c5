package revoke

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const minEntryTTL = time.Second

// RedisStore is a Redis-backed blacklist. Entries are plain keys with a
// TTL matching the remaining token lifetime; Redis expiry is the purge.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a blacklist store on the given Redis client.
// prefix sets the key namespace; empty defaults to "tgrv".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "tgrv"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(tokenID string) string {
	return s.prefix + ":" + tokenID
}

// Revoke inserts the blacklist entry for tokenID.
//
//	Performance: 1 Redis SET.
func (s *RedisStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl < minEntryTTL {
		ttl = minEntryTTL
	}
	if err := s.redis.Set(ctx, s.key(tokenID), revokedAtValue(), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RevokeOnce claims the blacklist entry for tokenID via SET NX; the NX
// round-trip is the compare-and-insert that makes rotation single-winner.
//
//	Performance: 1 Redis SET NX.
func (s *RedisStore) RevokeOnce(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl < minEntryTTL {
		ttl = minEntryTTL
	}
	won, err := s.redis.SetNX(ctx, s.key(tokenID), revokedAtValue(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return won, nil
}

// IsRevoked reports whether tokenID has an unexpired blacklist entry.
//
//	Performance: 1 Redis EXISTS.
func (s *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}

func revokedAtValue() string {
	return time.Now().UTC().Format(time.RFC3339)
}
