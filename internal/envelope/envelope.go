// Package envelope builds the bounded AnswerEnvelope the Ask pipeline
// returns to callers, once the gate stack and post-processor have had
// their say.
package envelope

import "basegraph.app/helixask/internal/domain"

// Tiers carries the primary and secondary falsifiability tiers the
// Arbiter and synthesis stage settled on.
type Tiers struct {
	Primary   domain.Tier
	Secondary domain.Tier
}

// Build assembles an AnswerEnvelope from the final answer text and the
// decisions made earlier in the pipeline. It is a pure function: the
// same inputs always produce the same envelope, so callers can retry or
// replay a request and compare envelopes byte for byte.
func Build(answer string, format domain.FormatKind, tiers Tiers, mode domain.AnswerMode, evidenceRefs []string, traceID string) domain.AnswerEnvelope {
	refs := make([]string, len(evidenceRefs))
	copy(refs, evidenceRefs)

	return domain.AnswerEnvelope{
		AnswerText:    answer,
		Format:        format,
		Tier:          tiers.Primary,
		SecondaryTier: tiers.Secondary,
		Mode:          mode,
		EvidenceRefs:  refs,
		TraceID:       traceID,
	}
}
