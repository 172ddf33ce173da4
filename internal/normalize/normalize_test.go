package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"basegraph.app/helixask/internal/normalize"
)

func TestContentTokensDropsStopwords(t *testing.T) {
	tokens := normalize.ContentTokens("What is the Platonic reasoning gate?")
	assert.NotContains(t, tokens, "what")
	assert.NotContains(t, tokens, "is")
	assert.NotContains(t, tokens, "the")
	assert.Contains(t, tokens, "platonic")
	assert.Contains(t, tokens, "reasoning")
	assert.Contains(t, tokens, "gate")
}

func TestDetectFilePathHints(t *testing.T) {
	hints := normalize.DetectFilePathHints("see server/routes/agi.plan.ts for the handler")
	assert.Contains(t, hints, "server/routes/agi.plan.ts")
}

func TestDetectEndpointHints(t *testing.T) {
	hints := normalize.DetectEndpointHints("Which file defines the HTTP route /api/agi/ask?")
	assert.Contains(t, hints, "/api/agi/ask")
}

func TestTrigramJaccardIdentical(t *testing.T) {
	assert.Equal(t, 1.0, normalize.TrigramJaccard("helix-ask", "helix-ask"))
}

func TestTrigramJaccardUnrelated(t *testing.T) {
	score := normalize.TrigramJaccard("helix-ask", "zzz-totally-different")
	assert.Less(t, score, 0.3)
}
