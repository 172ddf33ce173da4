package orchestrator

import (
	"context"
	"sync"
	"time"
)

// TraceStore is the persistence fallback a PlanCache rehydrates from when
// a plan has aged out of the in-memory cache.
type TraceStore interface {
	LoadPlan(ctx context.Context, id string) (Plan, bool, error)
}

type cachedPlan struct {
	plan      Plan
	expiresAt time.Time
	touchedAt time.Time
}

// PlanCache holds compiled plans in memory with a TTL and a max entry
// count, evicting the least-recently-touched entry once full. A miss
// falls through to the configured TraceStore before reporting not found.
type PlanCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	maxCount int
	entries  map[string]*cachedPlan
	store    TraceStore
}

// NewPlanCache constructs a cache with the given TTL and capacity. store
// may be nil, in which case a cache miss is simply a miss.
func NewPlanCache(ttl time.Duration, maxCount int, store TraceStore) *PlanCache {
	return &PlanCache{
		ttl:      ttl,
		maxCount: maxCount,
		entries:  make(map[string]*cachedPlan),
		store:    store,
	}
}

// Put stores a plan under id, evicting the oldest-touched entry first if
// the cache is already at capacity.
func (c *PlanCache) Put(id string, plan Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if _, exists := c.entries[id]; !exists && len(c.entries) >= c.maxCount && c.maxCount > 0 {
		c.evictOldestLocked()
	}

	c.entries[id] = &cachedPlan{plan: plan, expiresAt: now.Add(c.ttl), touchedAt: now}
}

func (c *PlanCache) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, e := range c.entries {
		if oldestID == "" || e.touchedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = e.touchedAt
		}
	}
	if oldestID != "" {
		delete(c.entries, oldestID)
	}
}

// Get returns a cached plan by id, refreshing its touch time on hit. On a
// cache miss or expiry it falls back to the TraceStore before reporting
// not found.
func (c *PlanCache) Get(ctx context.Context, id string) (Plan, bool) {
	c.mu.Lock()
	entry, ok := c.entries[id]
	if ok && time.Now().Before(entry.expiresAt) {
		entry.touchedAt = time.Now()
		plan := entry.plan
		c.mu.Unlock()
		return plan, true
	}
	if ok {
		delete(c.entries, id)
	}
	c.mu.Unlock()

	if c.store == nil {
		return Plan{}, false
	}

	plan, found, err := c.store.LoadPlan(ctx, id)
	if err != nil || !found {
		return Plan{}, false
	}

	c.Put(id, plan)
	return plan, true
}
