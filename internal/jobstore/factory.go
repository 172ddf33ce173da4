package jobstore

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// New picks a Store implementation from a Redis connection URL: an empty
// url selects the in-memory store (tests, single-process deployments
// without Redis), a non-empty url parses and connects a Redis client.
func New(redisURL string) (Store, error) {
	if redisURL == "" {
		return NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return NewRedisStore(redis.NewClient(opts)), nil
}
