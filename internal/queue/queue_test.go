package queue_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/queue"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestParseMessageRoundTrip(t *testing.T) {
	raw := redis.XMessage{
		ID: "1-1",
		Values: map[string]any{
			"task_type":   "step_event",
			"trace_id":    "trace-1",
			"step":        "retrieve",
			"tool":        "warp-ask",
			"success":     "true",
			"duration_ms": "42",
			"attempt":     "2",
		},
	}

	msg, err := queue.ParseMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, "1-1", msg.ID)
	assert.Equal(t, queue.TaskTypeStepEvent, msg.TaskType)
	assert.Equal(t, "trace-1", msg.TraceID)
	assert.Equal(t, "retrieve", msg.Step)
	assert.Equal(t, "warp-ask", msg.Tool)
	assert.True(t, msg.Success)
	assert.Equal(t, int64(42), msg.DurationMs)
	assert.Equal(t, 2, msg.Attempt)
}

func TestParseMessageDefaultsAttemptToOne(t *testing.T) {
	raw := redis.XMessage{ID: "1-1", Values: map[string]any{"step": "synthesize"}}

	msg, err := queue.ParseMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, msg.Attempt)
	assert.False(t, msg.Success)
}

func TestParseMessageMissingStepErrors(t *testing.T) {
	raw := redis.XMessage{ID: "1-1", Values: map[string]any{"tool": "warp-ask"}}

	_, err := queue.ParseMessage(raw)
	assert.Error(t, err)
}

func TestRedisProducerEnqueueWritesFields(t *testing.T) {
	client := newTestClient(t)
	producer := queue.NewRedisProducer(client, "helix-ask:events")

	err := producer.Enqueue(context.Background(), queue.EventMessage{
		TraceID:    "trace-9",
		Step:       "synthesize",
		Tool:       "synthesizer",
		Success:    false,
		ErrCode:    "execution_tool_error",
		DurationMs: 100,
	})
	require.NoError(t, err)

	entries, err := client.XRange(context.Background(), "helix-ask:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "trace-9", entries[0].Values["trace_id"])
	assert.Equal(t, "synthesize", entries[0].Values["step"])
	assert.Equal(t, "execution_tool_error", entries[0].Values["err_code"])
}

func TestRedisProducerEnqueueDefaultsAttempt(t *testing.T) {
	client := newTestClient(t)
	producer := queue.NewRedisProducer(client, "helix-ask:events")

	require.NoError(t, producer.Enqueue(context.Background(), queue.EventMessage{Step: "plan", Success: true}))

	entries, err := client.XRange(context.Background(), "helix-ask:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].Values["attempt"])
}
