package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisPrefix = "sess:"

// RedisStore keeps sessions in Redis so they survive restarts and are shared
// across instances. TTL is enforced by Redis itself.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Establish(ctx context.Context, ident Identity) (string, error) {
	token := uuid.NewString()
	data, err := json.Marshal(ident)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}
	if err := s.client.Set(ctx, redisPrefix+token, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session set: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (Identity, error) {
	data, err := s.client.Get(ctx, redisPrefix+token).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Identity{}, ErrNoSession
		}
		return Identity{}, fmt.Errorf("session get: %w", err)
	}
	var ident Identity
	if err := json.Unmarshal(data, &ident); err != nil {
		return Identity{}, fmt.Errorf("session unmarshal: %w", err)
	}
	return ident, nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, redisPrefix+token).Err()
}
