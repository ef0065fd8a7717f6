package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSource reads the to-do list from a single Redis key holding a JSON
// array, matching the file layout so the two backends are interchangeable.
type RedisSource struct {
	client *redis.Client
	key    string
}

func NewRedisSource(client *redis.Client, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

func (s *RedisSource) Load(ctx context.Context) ([]string, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: key %s", ErrNotFound, s.key)
		}
		return nil, fmt.Errorf("todo: redis get %s: %w", s.key, err)
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("todo: decode key %s: %w", s.key, err)
	}
	return items, nil
}
