package gates

import (
	"strings"

	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/internal/concepts"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/normalize"
)

// ResolvePreIntent runs the ambiguity resolver before intent routing: a
// short, vague question with no repo expectation and no confident concept
// match gets a clarify line instead of an answer attempt.
func ResolvePreIntent(r *Report, question domain.Question, store *concepts.Store, cfg config.GatesConfig) {
	tokens := normalize.ContentTokens(question.Prompt)
	if len(tokens) > cfg.AmbiguityShortTokens {
		r.pass("ambiguity_pre", map[string]float64{"content_tokens": float64(len(tokens))})
		return
	}
	if question.HasRepoHints() || question.HasFilePathHints() {
		r.pass("ambiguity_pre", nil)
		return
	}

	_, best, second := store.MatchTop2(question.Prompt)
	margin := best - second
	if best >= cfg.AmbiguityMinScore && margin >= cfg.AmbiguityMarginMin {
		r.pass("ambiguity_pre", map[string]float64{"concept_score": best, "concept_margin": margin})
		return
	}

	r.fail("ambiguity_pre", "short vague question with no confident concept match", map[string]float64{
		"content_tokens": float64(len(tokens)),
		"concept_score":  best,
		"concept_margin": margin,
	})
	r.setClarify("Could you say more about what part of the system or concept you mean?")
}

// ResolvePostRetrieval runs the post-retrieval ambiguity gate: terms from
// the question that never surface in the assembled context, when the
// question carries an explicit obligation (a repo hint), produce a clarify
// line naming up to max_terms missing terms instead of guessing.
func ResolvePostRetrieval(r *Report, question domain.Question, evidence domain.EvidencePack, cfg config.GatesConfig) {
	if !question.HasRepoHints() {
		r.pass("ambiguity_post", nil)
		return
	}

	contextTokens := normalize.TokenSet(evidence.ContextText())
	missing := make([]string, 0)
	for _, tok := range normalize.ContentTokens(question.Prompt) {
		if _, ok := contextTokens[tok]; ok {
			continue
		}
		missing = append(missing, tok)
	}

	if len(missing) == 0 {
		r.pass("ambiguity_post", map[string]float64{"missing_terms": 0})
		return
	}

	if len(missing) > cfg.AmbiguityMaxTerms {
		missing = missing[:cfg.AmbiguityMaxTerms]
	}

	r.fail("ambiguity_post", "question terms absent from retrieved context", map[string]float64{
		"missing_terms": float64(len(missing)),
	})
	r.setClarify("I couldn't find anything about " + strings.Join(missing, ", ") + " in the codebase. Can you point me at a file or clarify the term?")
}
