package lockout

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"olhopix/internal/platform/redis"
)

const keyPrefix = "lockout:"

// RedisStore keeps failure counters in Redis so lockout state survives
// restarts and is shared across instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) RecordFailure(ctx context.Context, identifier string, window time.Duration) (int, error) {
	key := keyPrefix + identifier

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment lockout counter: %w", err)
	}
	// First failure in a streak starts the window. Subsequent failures do
	// not extend it, so the counter always resets window after the first.
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("set lockout window: %w", err)
		}
	}
	return int(count), nil
}

func (s *RedisStore) Failures(ctx context.Context, identifier string) (int, error) {
	count, err := s.client.Get(ctx, keyPrefix+identifier).Int()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get lockout counter: %w", err)
	}
	return count, nil
}

func (s *RedisStore) Clear(ctx context.Context, identifier string) error {
	if err := s.client.Del(ctx, keyPrefix+identifier).Err(); err != nil {
		return fmt.Errorf("clear lockout counter: %w", err)
	}
	return nil
}
