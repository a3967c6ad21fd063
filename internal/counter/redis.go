package counter

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore is the shared counter store used in multi-process deployments.
// Increments run INCR and TTL in one pipeline; a negative TTL reply means the
// key carries no expiry yet, so the 24h expiry is armed afterwards.
type RedisStore struct {
	client goredis.Cmdable
}

// NewRedisStore wraps a connected redis client.
func NewRedisStore(client goredis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("counter: incr %q: %w", key, err)
	}
	return s.armExpiry(ctx, key, incr.Val(), ttl.Val())
}

func (s *RedisStore) IncrementBy(ctx context.Context, key string, amount int64) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.IncrBy(ctx, key, amount)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("counter: incrby %q: %w", key, err)
	}
	return s.armExpiry(ctx, key, incr.Val(), ttl.Val())
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("counter: get %q: %w", key, err)
	}
	return n, nil
}

func (s *RedisStore) armExpiry(ctx context.Context, key string, count int64, ttl time.Duration) (int64, error) {
	// go-redis hands back the no-expiry sentinel as a raw -1 duration (one
	// nanosecond), not -1 second; only non-negative replies are scaled to the
	// command precision. The key was incremented a moment ago so it exists,
	// which makes any negative reply "no expiry set yet".
	if ttl < 0 {
		if err := s.client.Expire(ctx, key, TTL).Err(); err != nil {
			return count, fmt.Errorf("counter: expire %q: %w", key, err)
		}
	}
	return count, nil
}

var _ Store = (*RedisStore)(nil)
