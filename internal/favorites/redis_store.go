package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pageza/mealquest/backend/internal/identity"
)

// RedisStore keeps one string key per storage key holding a JSON array.
type RedisStore struct {
	client *redis.Client
	log    logrus.FieldLogger
}

func NewRedisStore(client *redis.Client, log logrus.FieldLogger) *RedisStore {
	return &RedisStore{client: client, log: log}
}

func (s *RedisStore) Load(ctx context.Context, key identity.StorageKey) []string {
	return loadSoft(ctx, s, s.log, key)
}

func (s *RedisStore) Fetch(ctx context.Context, key identity.StorageKey) ([]string, error) {
	payload, err := s.client.Get(ctx, key.String()).Result()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return decodeIDs(payload)
}

func (s *RedisStore) Save(ctx context.Context, key identity.StorageKey, ids []string) error {
	payload, err := encodeIDs(ids)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key.String(), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
