package flash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisStore struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject the id generator (for unit testing)
	NewIDFunc func() string
}

func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
		ttl:         ttl,
		NewIDFunc:   newID,
	}
}

func (s *RedisStore) Put(ctx context.Context, msg Message) (string, error) {
	msgBytes, err := encode(msg)
	if err != nil {
		return "", err
	}

	id := s.NewIDFunc()
	cmd := s.redisClient.Set(ctx, keyPrefix+id, string(msgBytes), s.ttl)
	if err := cmd.Err(); err != nil {
		return "", fmt.Errorf("redis set flash %s: %w", id, err)
	}

	return id, nil
}

// Pop reads and removes the message in a single GETDEL, so concurrent pops
// of the same id see it at most once.
func (s *RedisStore) Pop(ctx context.Context, id string) (*Message, error) {
	cmd := s.redisClient.GetDel(ctx, keyPrefix+id)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis getdel flash %s: %w", id, err)
	}

	return decode([]byte(cmd.Val()))
}
