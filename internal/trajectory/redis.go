package trajectory

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"basegraph.app/helixask/internal/domain"
)

const maxWatchRetries = 10

// RedisGovernor holds the admission window in a Redis list capped to N
// entries via LTRIM, so every server replica shares one governor state.
// Grounded on internal/queue's use of Redis for process-external shared
// state.
type RedisGovernor struct {
	client     *redis.Client
	key        string
	windowSize int
	minSamples int
	alpha      float64
}

// NewRedisGovernor constructs a governor backed by a capped Redis list.
func NewRedisGovernor(client *redis.Client, alpha float64, windowSize, minSamples int) *RedisGovernor {
	return &RedisGovernor{
		client:     client,
		key:        "helix:alpha:window",
		windowSize: windowSize,
		minSamples: minSamples,
		alpha:      alpha,
	}
}

func (g *RedisGovernor) Admit(ctx context.Context, origin domain.TrajectoryOrigin) (bool, AlphaStats, error) {
	var ok bool
	var stats AlphaStats

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := g.client.Watch(ctx, func(tx *redis.Tx) error {
			entries, err := tx.LRange(ctx, g.key, 0, -1).Result()
			if err != nil {
				return fmt.Errorf("read alpha window: %w", err)
			}

			live, variant := countEntries(entries)
			admitted, s := admit(origin, live, variant, g.minSamples, g.alpha)
			ok, stats = admitted, s
			if !admitted {
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.RPush(ctx, g.key, string(origin))
				if g.windowSize > 0 {
					pipe.LTrim(ctx, g.key, int64(-g.windowSize), -1)
				}
				return nil
			})
			return err
		}, g.key)

		if err == nil {
			return ok, stats, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return false, AlphaStats{}, fmt.Errorf("trajectory: alpha governor admit: %w", err)
	}

	return false, AlphaStats{}, fmt.Errorf("trajectory: alpha governor admit: exhausted retries on %s", g.key)
}

func countEntries(entries []string) (live, variant int) {
	for _, e := range entries {
		if domain.TrajectoryOrigin(e) == domain.OriginLive {
			live++
		} else {
			variant++
		}
	}
	return live, variant
}
