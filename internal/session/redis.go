package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces session keys in a shared Redis database
const KeyPrefix = "walker-events:session:"

var _ Store = (*RedisStore)(nil)

// RedisStore is a Store backed by Redis, for running more than one bot process
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedis connects using a redis:// URL and checks the connection
func DialRedis(ctx context.Context, rawURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewRedisStore(client), nil
}

func key(userID string) string {
	return KeyPrefix + userID
}

// Set implements Store. Keys carry no TTL.
func (s *RedisStore) Set(ctx context.Context, userID, date string) error {
	if err := s.client.Set(ctx, key(userID), date, 0).Err(); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// Pop implements Store with GETDEL so concurrent pops see the date once
func (s *RedisStore) Pop(ctx context.Context, userID string) (string, bool, error) {
	date, err := s.client.GetDel(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("popping session: %w", err)
	}
	return date, true, nil
}

// Close releases the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
