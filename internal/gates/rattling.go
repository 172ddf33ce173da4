package gates

import (
	"strings"

	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/internal/normalize"
)

// Perturb produces a deterministic variant of the answer by reversing
// sentence order, the cheapest structural perturbation that still lets a
// claim-set distance measure catch an answer whose claims depend on
// position (numbered steps referencing "the above", dangling pronouns).
func Perturb(answer string) string {
	sentences := sentenceBoundary.Split(strings.TrimSpace(answer), -1)
	reversed := make([]string, 0, len(sentences))
	for i := len(sentences) - 1; i >= 0; i-- {
		s := strings.TrimRight(strings.TrimSpace(sentences[i]), ".!?")
		if s != "" {
			reversed = append(reversed, s)
		}
	}
	return strings.Join(reversed, ". ")
}

// claimSetDistance compares the two answers' content-token sets and
// returns 1 - Jaccard similarity, so identical claim content scores 0 and
// wholly disjoint content scores 1.
func claimSetDistance(base, perturbed string) float64 {
	a, b := normalize.TokenSet(base), normalize.TokenSet(perturbed)
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	return 1 - jaccard(a, b)
}

// Rattling perturbs the answer and measures claim-set distance from the
// base; above the threshold it annotates debug only, unless RattlingReject
// is set, in which case it fails the gate outright.
func Rattling(r *Report, answer string, cfg config.GatesConfig) (score float64, passed bool) {
	perturbed := Perturb(answer)
	score = claimSetDistance(answer, perturbed)

	unstable := score > cfg.RattlingThreshold
	metrics := map[string]float64{"rattling_score": score}

	if !unstable {
		r.pass("rattling", metrics)
		return score, true
	}

	if cfg.RattlingReject {
		r.fail("rattling", "answer is unstable under perturbation", metrics)
		return score, false
	}

	r.record(Verdict{Gate: "rattling", Passed: true, Reason: "unstable under perturbation, annotated only", Metrics: metrics})
	return score, true
}
