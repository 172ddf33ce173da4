package gates

import (
	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/internal/domain"
)

// ConfidenceSignals are the raw inputs the arbiter folds into a single
// bounded retrieval-confidence score.
type ConfidenceSignals struct {
	MatchRatio      float64
	MustIncludeOK   bool
	DocShare        float64
	FileCount       int
	ChannelCoverage float64
	ScoreGap        float64
	ViabilityOK     bool
}

// Arbiter turns retrieval signals into a domain routing decision, downgrading
// repo -> hybrid -> clarify when the question obligates repo grounding but
// that grounding didn't materialize.
type Arbiter struct {
	cfg config.ArbiterConfig
}

func NewArbiter(cfg config.ArbiterConfig) *Arbiter {
	return &Arbiter{cfg: cfg}
}

// idealFileCount is the file count at which the file-count term saturates.
const idealFileCount = 6.0

// Confidence combines matchRatio, mustInclude/viability flags, docShare,
// file count, channel coverage, and score gap into a single score. The
// term weights sum to exactly 1.0, so the sum exceeds 1.0 only when an
// unclamped input (matchRatio, docShare, channel coverage) is above 1.0;
// the final clamp bounds the result to [0,1].
func Confidence(s ConfidenceSignals) float64 {
	mustIncludeTerm := 0.0
	if s.MustIncludeOK {
		mustIncludeTerm = 1.0
	}
	viabilityTerm := 0.0
	if s.ViabilityOK {
		viabilityTerm = 1.0
	}
	fileCountTerm := float64(s.FileCount) / idealFileCount
	if fileCountTerm > 1.0 {
		fileCountTerm = 1.0
	}
	scoreGapTerm := s.ScoreGap
	if scoreGapTerm > 1.0 {
		scoreGapTerm = 1.0
	}

	sum := 0.30*s.MatchRatio +
		0.15*mustIncludeTerm +
		0.15*s.DocShare +
		0.10*fileCountTerm +
		0.15*s.ChannelCoverage +
		0.10*scoreGapTerm +
		0.05*viabilityTerm

	if sum < 0 {
		return 0
	}
	if sum > 1 {
		return 1
	}
	return sum
}

// Decide routes to repo/hybrid/general from the confidence score compared
// against repo_threshold and hybrid_threshold, then forces a downgrade
// (repo -> hybrid -> clarify) when obligationViolated is set: the intent
// demanded repo grounding but the evidence didn't satisfy it.
func (a *Arbiter) Decide(r *Report, intentDomain domain.Domain, signals ConfidenceSignals, obligationViolated bool) (domain.Domain, float64) {
	confidence := Confidence(signals)

	result := domain.DomainGeneral
	switch {
	case confidence >= a.cfg.RepoThreshold:
		if intentDomain == domain.DomainRepo || intentDomain == domain.DomainHybrid {
			result = intentDomain
		}
	case confidence >= a.cfg.HybridThreshold:
		if intentDomain != domain.DomainGeneral {
			result = domain.DomainHybrid
		}
	}

	// obligationViolated means a grounding requirement (must-include,
	// verification anchor) failed independent of the confidence score;
	// it cascades the result one rung down the repo -> hybrid -> clarify
	// ladder regardless of how high confidence scored.
	if obligationViolated {
		switch result {
		case domain.DomainRepo:
			result = domain.DomainHybrid
		case domain.DomainHybrid:
			r.setClarify("I don't have enough grounded evidence to answer confidently here. Can you point me at the relevant file or area?")
		}
	}

	metrics := map[string]float64{
		"confidence":       confidence,
		"match_ratio":      signals.MatchRatio,
		"doc_share":        signals.DocShare,
		"channel_coverage": signals.ChannelCoverage,
		"score_gap":        signals.ScoreGap,
	}
	if result == intentDomain {
		r.pass("arbiter", metrics)
	} else {
		r.fail("arbiter", "downgraded domain from "+string(intentDomain)+" to "+string(result), metrics)
	}

	return result, confidence
}
