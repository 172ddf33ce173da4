package orchestrator

import (
	"context"
	"log/slog"

	"basegraph.app/helixask/internal/queue"
)

// EventPublisher records one executed plan step to an external event log.
// A nil EventPublisher on Orchestrator disables this entirely; Execute
// never fails a plan run because event publishing failed.
type EventPublisher interface {
	Publish(ctx context.Context, msg queue.EventMessage) error
}

// redisEventPublisher fans a step event out to the main event stream and,
// for failed steps, also to a DLQ stream, reusing internal/queue's
// DLQ-on-failure pattern without the full consumer-group/ack cycle a
// retry-driven reader needs: this is a one-way audit log, nothing here
// gets read back and acked.
type redisEventPublisher struct {
	events queue.Producer
	dlq    queue.Producer
}

// NewRedisEventPublisher wires a step-event producer and its DLQ producer
// into an EventPublisher. dlq may be nil to disable DLQ mirroring.
func NewRedisEventPublisher(events, dlq queue.Producer) EventPublisher {
	return &redisEventPublisher{events: events, dlq: dlq}
}

func (p *redisEventPublisher) Publish(ctx context.Context, msg queue.EventMessage) error {
	if err := p.events.Enqueue(ctx, msg); err != nil {
		return err
	}
	if !msg.Success && p.dlq != nil {
		if err := p.dlq.Enqueue(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "failed to mirror failed step to dlq", "error", err, "step", msg.Step)
		}
	}
	return nil
}
