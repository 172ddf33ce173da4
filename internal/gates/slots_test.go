package gates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/gates"
)

func TestSlotCoveragePassesWhenNoSlotsRequired(t *testing.T) {
	r := &gates.Report{}
	missing, passed := gates.SlotCoverage(r, nil, "anything")
	assert.True(t, passed)
	assert.Empty(t, missing)
}

func TestSlotCoverageDetectsSatisfiedSlots(t *testing.T) {
	r := &gates.Report{}
	context := "A topic profile is defined as a tagged allowlist record. To verify this, run the retriever_test.go suite, see internal/retriever/retriever.go."
	slots := []domain.RequiredSlot{domain.SlotDefinition, domain.SlotVerification, domain.SlotRepoMapping}

	missing, passed := gates.SlotCoverage(r, slots, context)

	assert.True(t, passed)
	assert.Empty(t, missing)
}

func TestSlotCoverageFailsOnMissingSlot(t *testing.T) {
	r := &gates.Report{}
	context := "A topic profile constrains retrieval scope."
	slots := []domain.RequiredSlot{domain.SlotFailurePath}

	missing, passed := gates.SlotCoverage(r, slots, context)

	assert.False(t, passed)
	assert.Equal(t, []domain.RequiredSlot{domain.SlotFailurePath}, missing)
}
