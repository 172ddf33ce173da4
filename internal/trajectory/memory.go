package trajectory

import (
	"context"
	"sync"

	"basegraph.app/helixask/internal/domain"
)

// MemoryGovernor tracks the admission window in a process-local slice. It
// is the fallback used when no Redis URL is configured, matching
// jobstore's single-process mode.
type MemoryGovernor struct {
	mu         sync.Mutex
	window     []domain.TrajectoryOrigin
	windowSize int
	minSamples int
	alpha      float64
}

// NewMemoryGovernor constructs a governor holding the last windowSize
// admitted origins in memory.
func NewMemoryGovernor(alpha float64, windowSize, minSamples int) *MemoryGovernor {
	return &MemoryGovernor{windowSize: windowSize, minSamples: minSamples, alpha: alpha}
}

func (g *MemoryGovernor) Admit(_ context.Context, origin domain.TrajectoryOrigin) (bool, AlphaStats, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	live, variant := g.counts()
	ok, stats := admit(origin, live, variant, g.minSamples, g.alpha)
	if ok {
		g.window = append(g.window, origin)
		if g.windowSize > 0 && len(g.window) > g.windowSize {
			g.window = g.window[len(g.window)-g.windowSize:]
		}
	}
	return ok, stats, nil
}

func (g *MemoryGovernor) counts() (live, variant int) {
	for _, o := range g.window {
		if o == domain.OriginLive {
			live++
		} else {
			variant++
		}
	}
	return live, variant
}
