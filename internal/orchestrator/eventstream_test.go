package orchestrator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/orchestrator"
	"basegraph.app/helixask/internal/queue"
)

type fakeProducer struct {
	msgs []queue.EventMessage
	err  error
}

func (f *fakeProducer) Enqueue(_ context.Context, msg queue.EventMessage) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func TestRedisEventPublisherMirrorsOnlyFailuresToDLQ(t *testing.T) {
	events := &fakeProducer{}
	dlq := &fakeProducer{}
	pub := orchestrator.NewRedisEventPublisher(events, dlq)

	require.NoError(t, pub.Publish(context.Background(), queue.EventMessage{Step: "ok", Success: true}))
	require.NoError(t, pub.Publish(context.Background(), queue.EventMessage{Step: "bad", Success: false, ErrCode: "execution_tool_error"}))

	require.Len(t, events.msgs, 2)
	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "bad", dlq.msgs[0].Step)
}

func TestRedisEventPublisherNilDLQSkipsMirroring(t *testing.T) {
	events := &fakeProducer{}
	pub := orchestrator.NewRedisEventPublisher(events, nil)

	require.NoError(t, pub.Publish(context.Background(), queue.EventMessage{Step: "bad", Success: false}))
	require.Len(t, events.msgs, 1)
}

func TestExecutePublishesOneEventPerStep(t *testing.T) {
	events := &fakeProducer{}
	manifest := orchestrator.NewManifest(
		orchestrator.NewWarpAskTool(fakeAskRunner{envelope: domain.AnswerEnvelope{AnswerText: "answer", Format: domain.FormatBrief}}),
	)
	o := orchestrator.New(manifest)
	o.Events = orchestrator.NewRedisEventPublisher(events, nil)

	plan := orchestrator.Plan{Steps: []orchestrator.Step{{Name: "ask", Tool: orchestrator.ToolWarpAsk, Params: map[string]any{"question": "why?"}}}}
	result := o.Execute(context.Background(), plan, nil)

	require.NoError(t, result.Err)
	require.Len(t, events.msgs, 1)
	assert.Equal(t, "ask", events.msgs[0].Step)
	assert.True(t, events.msgs[0].Success)
}

func TestExecutePublishesFailureEventWithErrCode(t *testing.T) {
	events := &fakeProducer{}
	o := orchestrator.New(orchestrator.NewManifest())
	o.Events = orchestrator.NewRedisEventPublisher(events, nil)

	plan := orchestrator.Plan{Steps: []orchestrator.Step{{Name: "missing", Tool: "not-registered"}}}
	result := o.Execute(context.Background(), plan, nil)

	require.Error(t, result.Err)
	require.Len(t, events.msgs, 1)
	assert.False(t, events.msgs[0].Success)
	assert.NotEmpty(t, events.msgs[0].ErrCode)
}

func TestRedisEventPublisherPropagatesMainStreamError(t *testing.T) {
	events := &fakeProducer{err: errors.New("redis unreachable")}
	pub := orchestrator.NewRedisEventPublisher(events, &fakeProducer{})

	err := pub.Publish(context.Background(), queue.EventMessage{Step: "x", Success: true})
	require.Error(t, err)
}
