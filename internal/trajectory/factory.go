package trajectory

import "github.com/redis/go-redis/v9"

// NewGovernor selects a Redis-backed governor when redisURL is non-empty,
// falling back to an in-process window otherwise, mirroring jobstore.New.
func NewGovernor(redisURL string, alpha float64, windowSize, minSamples int) (Governor, error) {
	if redisURL == "" {
		return NewMemoryGovernor(alpha, windowSize, minSamples), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	return NewRedisGovernor(redis.NewClient(opts), alpha, windowSize, minSamples), nil
}
