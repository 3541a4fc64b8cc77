package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Register(ctx context.Context, jti, iqCode string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(jti), iqCode, ttl).Err()
}

func (s *redisSessionStore) Lookup(ctx context.Context, jti string) (string, error) {
	code, err := s.client.Get(ctx, sessionKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return code, err
}

func (s *redisSessionStore) Revoke(ctx context.Context, jti string) error {
	return s.client.Del(ctx, sessionKey(jti)).Err()
}
