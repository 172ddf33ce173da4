package gates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/gates"
)

func arbiterCfg() config.ArbiterConfig {
	return config.ArbiterConfig{RepoThreshold: 0.62, HybridThreshold: 0.35}
}

func TestConfidenceClampsToOne(t *testing.T) {
	score := gates.Confidence(gates.ConfidenceSignals{
		MatchRatio:      1,
		MustIncludeOK:   true,
		DocShare:        1,
		FileCount:       20,
		ChannelCoverage: 1,
		ScoreGap:        1,
		ViabilityOK:     true,
	})
	assert.Equal(t, 1.0, score)
}

func TestConfidenceZeroSignalsScoresZero(t *testing.T) {
	score := gates.Confidence(gates.ConfidenceSignals{})
	assert.Equal(t, 0.0, score)
}

func TestArbiterDecideKeepsRepoOnHighConfidence(t *testing.T) {
	a := gates.NewArbiter(arbiterCfg())
	r := &gates.Report{}

	result, confidence := a.Decide(r, domain.DomainRepo, gates.ConfidenceSignals{
		MatchRatio: 1, MustIncludeOK: true, DocShare: 0.5, FileCount: 6, ChannelCoverage: 1, ScoreGap: 0.5, ViabilityOK: true,
	}, false)

	assert.Equal(t, domain.DomainRepo, result)
	assert.Greater(t, confidence, 0.62)
	assert.False(t, r.Clarify)
}

func TestArbiterDowngradesToGeneralOnLowConfidence(t *testing.T) {
	a := gates.NewArbiter(arbiterCfg())
	r := &gates.Report{}

	result, confidence := a.Decide(r, domain.DomainRepo, gates.ConfidenceSignals{}, false)

	assert.Equal(t, domain.DomainGeneral, result)
	assert.Equal(t, 0.0, confidence)
}

func TestArbiterForcesDowngradeOnObligationViolation(t *testing.T) {
	a := gates.NewArbiter(arbiterCfg())
	r := &gates.Report{}

	result, _ := a.Decide(r, domain.DomainRepo, gates.ConfidenceSignals{
		MatchRatio: 1, MustIncludeOK: true, DocShare: 0.5, FileCount: 6, ChannelCoverage: 1, ScoreGap: 0.5, ViabilityOK: true,
	}, true)

	assert.Equal(t, domain.DomainHybrid, result)
}

func TestArbiterClarifiesWhenHybridObligationAlsoFails(t *testing.T) {
	a := gates.NewArbiter(arbiterCfg())
	r := &gates.Report{}

	// These signals land confidence in the hybrid band (>= 0.35, < 0.62),
	// so Hybrid is the pre-obligation result; the obligation violation
	// then cascades it one rung further, to clarify.
	a.Decide(r, domain.DomainHybrid, gates.ConfidenceSignals{MatchRatio: 1.0, ChannelCoverage: 0.7}, true)

	assert.True(t, r.Clarify)
}
