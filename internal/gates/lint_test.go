package gates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"basegraph.app/helixask/internal/gates"
)

func TestLintStripsJunkScaffolding(t *testing.T) {
	r := &gates.Report{}
	cleaned, reasons := gates.Lint(r, "As an AI language model, I can tell you that the retriever fuses channels.")
	assert.NotContains(t, cleaned, "As an AI")
	assert.NotEmpty(t, reasons)
}

func TestLintStripsDrawerBlock(t *testing.T) {
	r := &gates.Report{}
	cleaned, reasons := gates.Lint(r, "The answer is short.\n<details><summary>debug</summary>internal notes</summary></details>\nDone.")
	assert.NotContains(t, cleaned, "<details>")
	assert.NotEmpty(t, reasons)
}

func TestLintRewritesLeadingFilePath(t *testing.T) {
	r := &gates.Report{}
	cleaned, reasons := gates.Lint(r, "internal/retriever/retriever.go does the fusion work.")
	assert.Contains(t, cleaned, "The file `internal/retriever/retriever.go`")
	assert.NotEmpty(t, reasons)
}

func TestLintCanonicalizesPhysicsTerms(t *testing.T) {
	r := &gates.Report{}
	cleaned, reasons := gates.Lint(r, "The orchestrator runs a warp ask step before gr grounding.")
	assert.Contains(t, cleaned, "warp-ask")
	assert.Contains(t, cleaned, "gr-grounding")
	assert.NotEmpty(t, reasons)
}

func TestLintNoOpOnCleanAnswer(t *testing.T) {
	r := &gates.Report{}
	cleaned, reasons := gates.Lint(r, "The retriever fuses four channels with weighted RRF.")
	assert.Equal(t, "The retriever fuses four channels with weighted RRF.", cleaned)
	assert.Empty(t, reasons)
}
