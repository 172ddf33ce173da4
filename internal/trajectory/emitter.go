package trajectory

import (
	"time"

	"github.com/google/uuid"

	"basegraph.app/helixask/internal/domain"
)

// BuildInput collects everything an Ask (or plan/execute) run produced
// that the trajectory needs to fold into one training record.
type BuildInput struct {
	Goal       string
	IntentTags []string
	Evidence   domain.EvidencePack
	Envelopes  []domain.AnswerEnvelope
	Gates      domain.GateReport
	Origin     domain.TrajectoryOrigin
}

// Build assembles a Trajectory from an executed run's evidence, answer
// envelopes, and gate report. Citation-completion is measured as the
// fraction of envelopes that carry at least one evidence ref.
func Build(in BuildInput, now time.Time) domain.Trajectory {
	return domain.Trajectory{
		ID:                 uuid.NewString(),
		Goal:               in.Goal,
		IntentTags:         append([]string(nil), in.IntentTags...),
		Evidence:           append([]string(nil), in.Evidence.Files...),
		Citations:          citationsFrom(in.Envelopes),
		RetrievalMetrics:   retrievalMetricsWithCitations(in.Evidence, in.Envelopes),
		ExecutionEnvelopes: append([]domain.AnswerEnvelope(nil), in.Envelopes...),
		GateFlags:          gateFlags(in.Gates),
		Origin:             in.Origin,
		CreatedAt:          now,
	}
}

func citationsFrom(envelopes []domain.AnswerEnvelope) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range envelopes {
		for _, ref := range e.EvidenceRefs {
			if !seen[ref] {
				seen[ref] = true
				out = append(out, ref)
			}
		}
	}
	return out
}

func retrievalMetrics(ev domain.EvidencePack) map[string]float64 {
	metrics := map[string]float64{
		"top_score":       ev.TopScore,
		"score_gap":       ev.ScoreGap,
		"query_hit_count": float64(ev.QueryHitCount),
		"topic_tier_used": float64(ev.TopicTierUsed),
	}
	for ch, score := range ev.ChannelTopScores {
		metrics["channel_top_score_"+string(ch)] = score
	}
	for ch, hits := range ev.ChannelHits {
		metrics["channel_hits_"+string(ch)] = float64(hits)
	}
	return metrics
}

func retrievalMetricsWithCitations(ev domain.EvidencePack, envelopes []domain.AnswerEnvelope) map[string]float64 {
	metrics := retrievalMetrics(ev)
	metrics["citation_completion"] = citationCompletion(envelopes)
	return metrics
}

// citationCompletion is the fraction of execution envelopes that carry at
// least one evidence ref, stored in the trajectory's retrieval metrics
// under the citation_completion key.
func citationCompletion(envelopes []domain.AnswerEnvelope) float64 {
	if len(envelopes) == 0 {
		return 0
	}
	var cited int
	for _, e := range envelopes {
		if len(e.EvidenceRefs) > 0 {
			cited++
		}
	}
	return float64(cited) / float64(len(envelopes))
}

func gateFlags(report domain.GateReport) map[string]bool {
	flags := make(map[string]bool, len(report.Gates))
	for _, g := range report.Gates {
		flags[g.Name] = g.Pass
	}
	return flags
}
