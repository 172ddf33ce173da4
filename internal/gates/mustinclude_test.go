package gates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/gates"
)

func TestMustIncludePassesWhenFlagSet(t *testing.T) {
	r := &gates.Report{}
	assert.True(t, gates.MustInclude(r, domain.EvidencePack{MustIncludeOK: true}))
}

func TestMustIncludeFailsWhenFlagUnset(t *testing.T) {
	r := &gates.Report{}
	assert.False(t, gates.MustInclude(r, domain.EvidencePack{MustIncludeOK: false}))
}

func TestVerificationAnchorPassesWithNoAnchors(t *testing.T) {
	r := &gates.Report{}
	pack := domain.EvidencePack{Files: []string{"internal/retriever/retriever.go"}}
	assert.True(t, gates.VerificationAnchor(r, pack, nil))
}

func TestVerificationAnchorPassesOnMatchingFile(t *testing.T) {
	r := &gates.Report{}
	pack := domain.EvidencePack{Files: []string{"internal/gates/arbiter.go"}}
	assert.True(t, gates.VerificationAnchor(r, pack, []string{"internal/gates/**"}))
}

func TestVerificationAnchorFailsWithoutMatch(t *testing.T) {
	r := &gates.Report{}
	pack := domain.EvidencePack{Files: []string{"docs/readme.md"}}
	assert.False(t, gates.VerificationAnchor(r, pack, []string{"internal/gates/**"}))
}
