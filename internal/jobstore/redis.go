package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"basegraph.app/helixask/internal/domain"
)

// RedisStore backs the Job Store with Redis: each job is a hash
// (helix:job:<id>) holding the JSON-encoded record, linearized per id via
// WATCH/transaction CAS, plus a Pub/Sub channel (helix:job:<id>:events)
// on which partial-text and terminal updates are published for anyone
// holding a Subscribe handle.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client. Close closes that client,
// so it is not usable elsewhere after the store is closed.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(id string) string {
	return "helix:job:" + id
}

func jobChannel(id string) string {
	return "helix:job:" + id + ":events"
}

func (s *RedisStore) Create(ctx context.Context, sessionID, traceID, _ string, ttl time.Duration) (domain.JobRecord, error) {
	now := time.Now()
	record := domain.JobRecord{
		ID:        uuid.NewString(),
		Status:    domain.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
		SessionID: sessionID,
		TraceID:   traceID,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return domain.JobRecord{}, fmt.Errorf("marshal job record: %w", err)
	}

	// The Redis key's own TTL is a cleanup backstop, not the source of
	// truth for expiry: isExpired() checks ExpiresAt on every read, so a
	// record created with a zero or negative ttl (already expired) still
	// needs to live in Redis long enough to be read back as expired
	// rather than simply vanishing.
	redisTTL := ttl + time.Minute
	if redisTTL <= 0 {
		redisTTL = time.Minute
	}

	key := jobKey(record.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{"data": payload, "version": 1})
	pipe.Expire(ctx, key, redisTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.JobRecord{}, fmt.Errorf("create job %s: %w", record.ID, err)
	}

	return record, nil
}

// mutate loads the current record under a WATCH on the job's key, applies
// fn, and writes the result back inside a MULTI/EXEC transaction. If
// another writer touches the key between the watch and the transaction,
// go-redis returns redis.TxFailedErr and mutate retries, which is what
// linearizes writes for a given job id without a distributed lock.
func (s *RedisStore) mutate(ctx context.Context, id string, fn func(domain.JobRecord) (domain.JobRecord, error)) error {
	key := jobKey(id)

	for attempt := 0; attempt < 10; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.HGet(ctx, key, "data").Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return ErrNotFound
				}
				return fmt.Errorf("read job %s: %w", id, err)
			}

			var record domain.JobRecord
			if err := json.Unmarshal([]byte(raw), &record); err != nil {
				return fmt.Errorf("unmarshal job %s: %w", id, err)
			}
			if isExpired(record) {
				return ErrExpired
			}

			next, err := fn(record)
			if err != nil {
				return err
			}
			next.UpdatedAt = time.Now()

			payload, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("marshal job %s: %w", id, err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HIncrBy(ctx, key, "version", 1)
				pipe.HSet(ctx, key, "data", payload)
				return nil
			})
			return err
		}, key)

		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return fmt.Errorf("mutate job %s: too many CAS retries", id)
}

func (s *RedisStore) MarkRunning(ctx context.Context, id string) (bool, error) {
	ok := false
	err := s.mutate(ctx, id, func(r domain.JobRecord) (domain.JobRecord, error) {
		r.Status = domain.JobRunning
		ok = true
		return r, nil
	})
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired) {
		return false, nil
	}
	return ok, err
}

func (s *RedisStore) AppendPartial(ctx context.Context, id, chunk string) error {
	err := s.mutate(ctx, id, func(r domain.JobRecord) (domain.JobRecord, error) {
		r.PartialText += chunk
		return r, nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, id, "partial", chunk)
	return nil
}

func (s *RedisStore) Complete(ctx context.Context, id string, result domain.AnswerEnvelope) error {
	err := s.mutate(ctx, id, func(r domain.JobRecord) (domain.JobRecord, error) {
		r.Status = domain.JobCompleted
		r.Result = &result
		return r, nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, id, "complete", result.AnswerText)
	return nil
}

func (s *RedisStore) Fail(ctx context.Context, id string, errMsg string) error {
	err := s.mutate(ctx, id, func(r domain.JobRecord) (domain.JobRecord, error) {
		r.Status = domain.JobFailed
		r.Error = errMsg
		return r, nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, id, "fail", errMsg)
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (domain.JobRecord, error) {
	raw, err := s.client.HGet(ctx, jobKey(id), "data").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.JobRecord{}, ErrNotFound
		}
		return domain.JobRecord{}, fmt.Errorf("get job %s: %w", id, err)
	}

	var record domain.JobRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return domain.JobRecord{}, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	if isExpired(record) {
		return domain.JobRecord{}, ErrExpired
	}
	return record, nil
}

// Prune is a no-op for the Redis store: expired hashes fall out of Redis
// on their own once their TTL passes, so there's nothing left to sweep.
func (s *RedisStore) Prune(_ context.Context) (int, error) {
	return 0, nil
}

func (s *RedisStore) publish(ctx context.Context, id, event, payload string) {
	msg, err := json.Marshal(map[string]string{"event": event, "payload": payload})
	if err != nil {
		return
	}
	if err := s.client.Publish(ctx, jobChannel(id), msg).Err(); err != nil {
		slog.WarnContext(ctx, "job event publish failed", "job_id", id, "error", err)
	}
}

// Subscribe returns a Pub/Sub handle for a job's event channel, so a
// caller can observe partial text as it streams in without re-reading the
// hash on every chunk.
func (s *RedisStore) Subscribe(ctx context.Context, id string) *redis.PubSub {
	return s.client.Subscribe(ctx, jobChannel(id))
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
