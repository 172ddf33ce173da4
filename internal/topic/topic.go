// Package topic tags a question against a closed tag vocabulary and
// derives a TopicProfile constraining the retriever's allowlist tiers.
package topic

import (
	"strings"

	"basegraph.app/helixask/internal/domain"
)

// Tag is a closed enum of topic labels.
type Tag string

const (
	TagHelixAsk Tag = "helix_ask"
	TagWarp     Tag = "warp"
	TagIdeology Tag = "ideology"
	TagLedger   Tag = "ledger"
	TagStar     Tag = "star"
	TagConcepts Tag = "concepts"
	TagPhysics  Tag = "physics"
)

var allTags = []Tag{TagHelixAsk, TagWarp, TagIdeology, TagLedger, TagStar, TagConcepts, TagPhysics}

// keywordsByTag drives the tagger: any keyword hit assigns the tag.
var keywordsByTag = map[Tag][]string{
	TagHelixAsk: {"helix ask", "ask pipeline", "intent directory", "evidence pack", "synthesizer"},
	TagWarp:     {"warp", "ftl", "propulsion"},
	TagIdeology: {"ideology", "belief graph", "ethos"},
	TagLedger:   {"ledger", "trajectory", "training trace"},
	TagStar:     {"star", "stellar"},
	TagConcepts: {"concept", "definition", "platonic"},
	TagPhysics:  {"physics", "viability", "gr-grounding", "gravitational"},
}

// Tagger assigns topic tags to a question.
type Tagger struct{}

func NewTagger() *Tagger {
	return &Tagger{}
}

// Tag returns the closed-vocabulary tags that fire for the question and
// search query combined.
func (t *Tagger) Tag(question, searchQuery string) []Tag {
	combined := strings.ToLower(question + " " + searchQuery)

	var hits []Tag
	for _, tag := range allTags {
		for _, kw := range keywordsByTag[tag] {
			if strings.Contains(combined, kw) {
				hits = append(hits, tag)
				break
			}
		}
	}
	return hits
}

// Profiler derives a TopicProfile from a set of tags.
type Profiler struct {
	profiles map[Tag]domain.TopicProfile
}

// NewProfiler builds a profiler from a per-tag profile table, loaded at
// startup alongside the intent directory.
func NewProfiler(profiles map[Tag]domain.TopicProfile) *Profiler {
	return &Profiler{profiles: profiles}
}

// Profile merges the per-tag topic profiles for the given tags into a
// single TopicProfile: allowlist tiers are concatenated in tag order
// (preserving each profile's own tier ordering), must-include sets and
// boost/deboost paths are unioned, and min_tier_candidates takes the
// maximum across tags (the strictest requirement wins). Returns the zero
// value and false if no tag has a registered profile.
func (p *Profiler) Profile(tags []Tag) (domain.TopicProfile, bool) {
	var merged domain.TopicProfile
	found := false

	mustInclude := map[string]struct{}{}
	mustPattern := map[string]struct{}{}
	boost := map[string]struct{}{}
	deboost := map[string]struct{}{}

	for _, tag := range tags {
		tp, ok := p.profiles[tag]
		if !ok {
			continue
		}
		found = true

		merged.Tags = append(merged.Tags, tp.Tags...)
		merged.AllowlistTiers = append(merged.AllowlistTiers, tp.AllowlistTiers...)
		for _, f := range tp.MustIncludeFiles {
			mustInclude[f] = struct{}{}
		}
		for _, pat := range tp.MustIncludePatterns {
			mustPattern[pat] = struct{}{}
		}
		for _, b := range tp.BoostPaths {
			boost[b] = struct{}{}
		}
		for _, dp := range tp.DeboostPaths {
			deboost[dp] = struct{}{}
		}
		if tp.MinTierCandidates > merged.MinTierCandidates {
			merged.MinTierCandidates = tp.MinTierCandidates
		}
	}

	if !found {
		return domain.TopicProfile{}, false
	}

	merged.MustIncludeFiles = setToSlice(mustInclude)
	merged.MustIncludePatterns = setToSlice(mustPattern)
	merged.BoostPaths = setToSlice(boost)
	merged.DeboostPaths = setToSlice(deboost)

	return merged, true
}

func setToSlice(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
