package gates

import (
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/retriever"
)

// MustInclude checks the evidence pack's must-include flag, computed by
// the retriever from the topic profile's and plan directives' must-include
// sets during tier descent.
func MustInclude(r *Report, pack domain.EvidencePack) bool {
	if pack.MustIncludeOK {
		r.pass("must_include", nil)
		return true
	}
	r.fail("must_include", "no retrieved file matched a required must-include set", nil)
	return false
}

// VerificationAnchor checks that the evidence pack cites at least one path
// from a closed anchor list, for intents/questions that require grounding
// in a specific known-good set of files.
func VerificationAnchor(r *Report, pack domain.EvidencePack, anchors []string) bool {
	if len(anchors) == 0 {
		r.pass("verification_anchor", nil)
		return true
	}

	for _, f := range pack.Files {
		for _, anchor := range anchors {
			if retriever.MatchGlob(anchor, f) {
				r.pass("verification_anchor", nil)
				return true
			}
		}
	}

	r.fail("verification_anchor", "no evidence file matched the verification anchor list", nil)
	return false
}
