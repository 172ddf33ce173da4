package domain

import "regexp"

// IntentProfile is a routing record loaded at startup and treated as read-only.
type IntentProfile struct {
	ID            string
	Label         string
	Domain        Domain
	Tier          Tier
	SecondaryTier Tier
	Strategy      Strategy
	FormatPolicy  FormatKind
	Evidence      EvidencePolicy
	Matchers      []Matcher
	// Fallback names a profile ID to use when the caller reports a repo
	// expectation this profile's domain can't satisfy (e.g. general -> hybrid).
	Fallback string
}

// EvidencePolicy constrains what kinds of evidence an intent may cite.
type EvidencePolicy struct {
	AllowCitations    bool
	RequireCitations  bool
	AllowedKinds      []Channel
}

// Matcher is a single phrase or pattern an Intent Profile scans for, in
// declared priority order. Patterns are pre-compiled at load time.
type Matcher struct {
	Phrase  string
	Pattern *regexp.Regexp
}

// TopicProfile is derived from a question's tags and constrains retrieval scope.
type TopicProfile struct {
	Tags              []string
	AllowlistTiers    [][]string // ordered groups of path-pattern globs, descended in order
	MustIncludeFiles  []string
	MustIncludePatterns []string
	BoostPaths        []string
	DeboostPaths      []string
	MinTierCandidates int
}

// PlanDirectives is the plan-pass parser's output constraining retrieval scope.
type PlanDirectives struct {
	PreferredSurfaces []Surface
	AvoidSurfaces     []Surface
	MustIncludeGlobs  []string
	RequiredSlots     []RequiredSlot
	ClarifyQuestion   string
	// Hints holds unknown preferred_surfaces/must_include_globs values that
	// didn't fit the closed surface set or a path shape; demoted to hints.
	Hints []string
	// QueryHints are additional search queries emitted by the plan pass,
	// merged with the base queries (dedup, order preserved, capped).
	QueryHints []string
}

// PlanScope is the retrieval-facing projection of plan directives and topic profile.
type PlanScope struct {
	AllowlistTiers   [][]string
	Avoidlist        []string
	MustIncludeGlobs []string
	DocsFirst        bool
	DocsAllowlist    []string
}
