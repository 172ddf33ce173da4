// Package trajectory assembles executed-answer trajectories for the
// training store and gates their admission through the alpha governor.
package trajectory

import (
	"context"

	"basegraph.app/helixask/internal/domain"
)

// AlphaStats describes the governor's window state at the moment of an
// admission decision, shaped to surface directly in the 409 response body.
type AlphaStats struct {
	Target  float64
	Live    int
	Variant int
	Run     float64
}

// Governor decides whether a trace of the given origin may be admitted to
// the training store, keeping the live/variant mix within the configured
// alpha target over a sliding window of recent decisions.
type Governor interface {
	Admit(ctx context.Context, origin domain.TrajectoryOrigin) (bool, AlphaStats, error)
}

// admit implements the shared admission rule against counts of live/variant
// origins observed in a window of size window. Live traces
// are always admitted and recorded; variant traces are denied once
// admitting them would push the variant share above (1-alpha)/alpha *
// live. Below minSamples total observations the governor is still
// bootstrapping its window and admits unconditionally.
func admit(origin domain.TrajectoryOrigin, live, variant, minSamples int, alpha float64) (bool, AlphaStats) {
	stats := AlphaStats{Target: alpha, Live: live, Variant: variant, Run: runRatio(live, variant)}

	if origin == domain.OriginLive {
		return true, stats
	}

	if live+variant < minSamples {
		return true, stats
	}

	candidateVariant := variant + 1
	ceiling := (1 - alpha) / alpha * float64(live)
	if float64(candidateVariant) > ceiling {
		return false, stats
	}

	stats = AlphaStats{Target: alpha, Live: live, Variant: candidateVariant, Run: runRatio(live, candidateVariant)}
	return true, stats
}

func runRatio(live, variant int) float64 {
	total := live + variant
	if total == 0 {
		return 1
	}
	return float64(live) / float64(total)
}
