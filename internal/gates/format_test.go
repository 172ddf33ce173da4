package gates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/gates"
)

func TestFormatEnforceStepsPassesWithNumberedListAndInPractice(t *testing.T) {
	r := &gates.Report{}
	answer := "1. Normalize the question.\n2. Route intent.\n3. Retrieve evidence.\n\nIn practice, this keeps the pipeline deterministic."

	fixed, passed := gates.FormatEnforce(r, "walk me through the steps", domain.FormatSpec{Format: domain.FormatSteps}, answer)

	assert.True(t, passed)
	assert.Equal(t, answer, fixed)
}

func TestFormatEnforceStepsFailsWithoutNumberedList(t *testing.T) {
	r := &gates.Report{}
	answer := "The pipeline normalizes, routes, and retrieves."

	_, passed := gates.FormatEnforce(r, "walk me through the steps", domain.FormatSpec{Format: domain.FormatSteps}, answer)

	assert.False(t, passed)
}

func TestFormatEnforceBriefCollapsesStrayNumberedList(t *testing.T) {
	r := &gates.Report{}
	answer := "1. First point.\n2. Second point."

	fixed, passed := gates.FormatEnforce(r, "what is the retriever", domain.FormatSpec{Format: domain.FormatBrief}, answer)

	assert.True(t, passed)
	assert.Contains(t, fixed, "- First point.")
	assert.NotContains(t, fixed, "1.")
}

func TestFormatEnforceMergesExtraParagraphsWhenTwoAsked(t *testing.T) {
	r := &gates.Report{}
	answer := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."

	fixed, passed := gates.FormatEnforce(r, "explain this in two short paragraphs", domain.FormatSpec{Format: domain.FormatBrief}, answer)

	assert.True(t, passed)
	paragraphCount := 0
	for _, p := range []string{"First paragraph.", "Second paragraph. Third paragraph."} {
		assert.Contains(t, fixed, p)
		paragraphCount++
	}
	assert.Equal(t, 2, paragraphCount)
}
