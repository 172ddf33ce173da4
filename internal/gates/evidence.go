package gates

import (
	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/normalize"
)

// Evidence checks how much of the question's content vocabulary actually
// shows up in the assembled context. critic applies the stricter
// EvidenceCriticMinRatio threshold instead of the base one.
func Evidence(r *Report, question domain.Question, pack domain.EvidencePack, cfg config.GatesConfig, critic bool) (matchRatio float64, passed bool) {
	contextSet := normalize.TokenSet(pack.ContextText())
	tokens := normalize.ContentTokens(question.Prompt)
	if len(tokens) == 0 {
		r.pass("evidence", map[string]float64{"match_ratio": 1})
		return 1, true
	}

	matched := 0
	for _, tok := range tokens {
		if _, ok := contextSet[tok]; ok {
			matched++
		}
	}
	matchRatio = float64(matched) / float64(len(tokens))

	minRatio := cfg.EvidenceMinRatio
	if critic {
		minRatio = cfg.EvidenceCriticMinRatio
	}

	passed = matchRatio >= minRatio && matched >= cfg.EvidenceMinTokens
	metrics := map[string]float64{"match_ratio": matchRatio, "matched_tokens": float64(matched)}
	if passed {
		r.pass("evidence", metrics)
	} else {
		r.fail("evidence", "context doesn't cover enough of the question's vocabulary", metrics)
	}
	return matchRatio, passed
}
