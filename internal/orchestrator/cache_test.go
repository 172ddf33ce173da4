package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/orchestrator"
)

type fakeTraceStore struct {
	plan  orchestrator.Plan
	found bool
	err   error
}

func (f fakeTraceStore) LoadPlan(_ context.Context, _ string) (orchestrator.Plan, bool, error) {
	return f.plan, f.found, f.err
}

func TestPlanCacheGetMissFallsThroughToStore(t *testing.T) {
	stored := orchestrator.Plan{Goal: "why does warp-ask re-enter the pipeline?"}
	cache := orchestrator.NewPlanCache(time.Minute, 10, fakeTraceStore{plan: stored, found: true})

	plan, ok := cache.Get(context.Background(), "trace-1")
	require.True(t, ok)
	assert.Equal(t, stored.Goal, plan.Goal)
}

func TestPlanCacheGetMissWithNilStoreReturnsNotFound(t *testing.T) {
	cache := orchestrator.NewPlanCache(time.Minute, 10, nil)

	_, ok := cache.Get(context.Background(), "missing")
	assert.False(t, ok)
}

func TestPlanCachePutThenGetHitsWithoutStoreFallback(t *testing.T) {
	cache := orchestrator.NewPlanCache(time.Minute, 10, nil)
	plan := orchestrator.Plan{Goal: "where is the retriever wired in?"}

	cache.Put("trace-2", plan)

	got, ok := cache.Get(context.Background(), "trace-2")
	require.True(t, ok)
	assert.Equal(t, plan.Goal, got.Goal)
}

func TestPlanCacheEvictsOldestWhenFull(t *testing.T) {
	cache := orchestrator.NewPlanCache(time.Minute, 2, nil)

	cache.Put("a", orchestrator.Plan{Goal: "a"})
	time.Sleep(time.Millisecond)
	cache.Put("b", orchestrator.Plan{Goal: "b"})
	time.Sleep(time.Millisecond)
	cache.Put("c", orchestrator.Plan{Goal: "c"})

	_, ok := cache.Get(context.Background(), "a")
	assert.False(t, ok, "oldest-touched entry should have been evicted")

	_, ok = cache.Get(context.Background(), "c")
	assert.True(t, ok)
}

func TestPlanCacheGetExpiresEntry(t *testing.T) {
	cache := orchestrator.NewPlanCache(time.Millisecond, 10, nil)
	cache.Put("trace-3", orchestrator.Plan{Goal: "short-lived"})

	time.Sleep(5 * time.Millisecond)

	_, ok := cache.Get(context.Background(), "trace-3")
	assert.False(t, ok)
}
