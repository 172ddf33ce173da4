package toollog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/toollog"
)

func TestBufferEvictsOldestPastCapacity(t *testing.T) {
	buf := toollog.NewBuffer(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, buf.Ingest(ctx, toollog.Entry{Message: string(rune('a' + i))}))
	}

	recent, err := buf.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "c", recent[0].Message)
	assert.Equal(t, "e", recent[2].Message)
}

func TestBufferRecentHonorsLimit(t *testing.T) {
	buf := toollog.NewBuffer(10)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, buf.Ingest(ctx, toollog.Entry{Message: string(rune('a' + i))}))
	}

	recent, err := buf.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Message)
	assert.Equal(t, "d", recent[1].Message)
}

func TestBufferSubscribeReceivesNewEntries(t *testing.T) {
	buf := toollog.NewBuffer(10)
	ctx := context.Background()

	ch, cancel := buf.Subscribe()
	defer cancel()

	require.NoError(t, buf.Ingest(ctx, toollog.Entry{Message: "hello"}))

	select {
	case e := <-ch:
		assert.Equal(t, "hello", e.Message)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive ingested entry")
	}
}

func TestBufferSubscribeCancelStopsDelivery(t *testing.T) {
	buf := toollog.NewBuffer(10)
	ctx := context.Background()

	ch, cancel := buf.Subscribe()
	cancel()

	require.NoError(t, buf.Ingest(ctx, toollog.Entry{Message: "hello"}))

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after cancel")
}

func TestTenantLimiterAllowsBurstThenDenies(t *testing.T) {
	l := toollog.NewTenantLimiter(1, 2)

	assert.True(t, l.Allow("tenant-a"))
	assert.True(t, l.Allow("tenant-a"))
	assert.False(t, l.Allow("tenant-a"))
}

func TestTenantLimiterTracksTenantsIndependently(t *testing.T) {
	l := toollog.NewTenantLimiter(1, 1)

	assert.True(t, l.Allow("tenant-a"))
	assert.False(t, l.Allow("tenant-a"))
	assert.True(t, l.Allow("tenant-b"))
}
