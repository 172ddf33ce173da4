package gates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"basegraph.app/helixask/internal/gates"
)

func TestPerturbReversesSentenceOrder(t *testing.T) {
	perturbed := gates.Perturb("First sentence. Second sentence. Third sentence.")
	assert.Equal(t, "Third sentence. Second sentence. First sentence", perturbed)
}

func TestRattlingPassesOnStableAnswer(t *testing.T) {
	r := &gates.Report{}
	score, passed := gates.Rattling(r, "The retriever fuses channels with RRF.", testGatesConfig())
	assert.True(t, passed)
	assert.GreaterOrEqual(t, score, 0.0)
}

func TestRattlingAnnotatesOnlyByDefault(t *testing.T) {
	cfg := testGatesConfig()
	cfg.RattlingThreshold = -1 // force every answer to read as unstable
	r := &gates.Report{}

	_, passed := gates.Rattling(r, "A completely different claim set entirely unrelated to anything else here at all.", cfg)

	assert.True(t, passed)
	lastVerdict := r.Verdicts[len(r.Verdicts)-1]
	assert.Contains(t, lastVerdict.Reason, "annotated only")
}

func TestRattlingRejectsWhenConfigured(t *testing.T) {
	cfg := testGatesConfig()
	cfg.RattlingThreshold = -1
	cfg.RattlingReject = true
	r := &gates.Report{}

	_, passed := gates.Rattling(r, "A completely different claim set entirely unrelated to anything else here at all.", cfg)

	assert.False(t, passed)
}
