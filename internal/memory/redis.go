package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"mnemo/internal/config"
)

// RedisStore keeps each user's facts in one hash at <prefix><userID>.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the configured server and pings it once.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return NewRedisStoreWithClient(client, cfg.Prefix), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisStore) Remember(ctx context.Context, userID, key, value string) error {
	return s.client.HSet(ctx, s.key(userID), Normalize(key), strings.TrimSpace(value)).Err()
}

func (s *RedisStore) Recall(ctx context.Context, userID, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key(userID), Normalize(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) List(ctx context.Context, userID string) (map[string]string, error) {
	m, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

func (s *RedisStore) Forget(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
