package toollog

import (
	"sync"

	"golang.org/x/time/rate"
)

// TenantLimiter hands out one token bucket per tenant, lazily created on
// first use, for POST /tools/logs/ingest so one noisy caller can't starve
// the buffer for everyone else sharing the process.
type TenantLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewTenantLimiter(ratePerSecond float64, burst int) *TenantLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &TenantLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(ratePerSecond),
		burst:    burst,
	}
}

func (t *TenantLimiter) Allow(tenant string) bool {
	if tenant == "" {
		tenant = "anonymous"
	}

	t.mu.Lock()
	l, ok := t.limiters[tenant]
	if !ok {
		l = rate.NewLimiter(t.rps, t.burst)
		t.limiters[tenant] = l
	}
	t.mu.Unlock()

	return l.Allow()
}
