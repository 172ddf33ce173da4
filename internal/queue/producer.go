package queue

import (
	"context"
	"fmt"
	"log/slog"

	"basegraph.app/helixask/common/logger"
	"github.com/redis/go-redis/v9"
)

// EventMessage is one executed plan step, published to the orchestrator's
// Redis Stream for downstream tailing and auditing.
type EventMessage struct {
	TraceID    string
	Step       string
	Tool       string
	Success    bool
	ErrCode    string
	DurationMs int64
	Attempt    int
}

type Producer interface {
	Enqueue(ctx context.Context, msg EventMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
}

func NewRedisProducer(client *redis.Client, stream string) Producer {
	return &redisProducer{
		client: client,
		stream: stream,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg EventMessage) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TraceID:   &msg.TraceID,
		Component: "helixask.queue.producer",
	})

	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"task_type":   string(TaskTypeStepEvent),
		"trace_id":    msg.TraceID,
		"step":        msg.Step,
		"tool":        msg.Tool,
		"success":     msg.Success,
		"duration_ms": msg.DurationMs,
		"attempt":     attempt,
	}
	if msg.ErrCode != "" {
		fields["err_code"] = msg.ErrCode
	}

	// Capped at ~100k entries instead of growing unbounded, the fix the
	// teacher's own producer flagged as a TODO and never applied.
	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 100000,
		Approx: true,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue step event (stream=%s): %w", p.stream, err)
	}

	slog.InfoContext(ctx, "published step event",
		"step", msg.Step,
		"tool", msg.Tool,
		"success", msg.Success,
		"attempt", attempt,
		"stream", p.stream)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
