package stubapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenStore keeps issued tokens in Redis so several stub server
// instances can share one session space. Keys expire with the token TTL.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func redisTokenKey(kind, token string) string {
	return fmt.Sprintf("token:%s:%s", kind, token)
}

func (s *RedisTokenStore) Save(ctx context.Context, kind, token string, userID int64, ttl time.Duration) error {
	key := redisTokenKey(kind, token)
	if err := s.client.Set(ctx, key, strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Lookup(ctx context.Context, kind, token string) (int64, error) {
	key := redisTokenKey(kind, token)

	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse token value failed: %w", err)
	}
	return userID, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, kind, token string) error {
	if err := s.client.Del(ctx, redisTokenKey(kind, token)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
