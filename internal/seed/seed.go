// Package seed holds the default Intent Directory, topic profiles, and
// ambiguity-resolver concept cards cmd/server wires in at startup. None of
// this is derived at runtime; it is the closed, hand-authored vocabulary
// the rest of the pipeline matches questions against.
package seed

import (
	"basegraph.app/helixask/internal/concepts"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/topic"
)

// IntentProfiles returns the Intent Directory's default profile set, one
// per named strategy the synthesizer and evidence distiller support.
func IntentProfiles() []domain.IntentProfile {
	return []domain.IntentProfile{
		{
			ID:           "repo-explain",
			Label:        "Repo Explain",
			Domain:       domain.DomainRepo,
			Tier:         domain.TierF2,
			Strategy:     domain.StrategyRepoExplain,
			FormatPolicy: domain.FormatAuto,
			Evidence: domain.EvidencePolicy{
				AllowCitations:   true,
				RequireCitations: true,
				AllowedKinds:     []domain.Channel{domain.ChannelLexical, domain.ChannelSymbol, domain.ChannelPath},
			},
			Matchers: []domain.Matcher{
				{Phrase: "where is"},
				{Phrase: "how does"},
				{Phrase: "which file"},
				{Phrase: "what calls"},
			},
			Fallback: "hybrid-explain",
		},
		{
			ID:           "hybrid-explain",
			Label:        "Hybrid Explain",
			Domain:       domain.DomainHybrid,
			Tier:         domain.TierF1,
			SecondaryTier: domain.TierF2,
			Strategy:     domain.StrategyHybridExplain,
			FormatPolicy: domain.FormatAuto,
			Evidence: domain.EvidencePolicy{
				AllowCitations: true,
				AllowedKinds:   []domain.Channel{domain.ChannelLexical, domain.ChannelSymbol, domain.ChannelFuzzy, domain.ChannelPath},
			},
			Matchers: []domain.Matcher{
				{Phrase: "why"},
				{Phrase: "explain"},
			},
			Fallback: "general",
		},
		{
			ID:           "constraint-report",
			Label:        "Constraint Report",
			Domain:       domain.DomainHybrid,
			Tier:         domain.TierF2,
			Strategy:     domain.StrategyConstraintReport,
			FormatPolicy: domain.FormatSteps,
			Evidence: domain.EvidencePolicy{
				AllowCitations: true,
				AllowedKinds:   []domain.Channel{domain.ChannelLexical, domain.ChannelPath},
			},
			Matchers: []domain.Matcher{
				{Phrase: "is it allowed"},
				{Phrase: "budget"},
				{Phrase: "limit"},
			},
			Fallback: "hybrid-explain",
		},
		{
			ID:           "concept-definition",
			Label:        "Concept Definition",
			Domain:       domain.DomainFalsifiable,
			Tier:         domain.TierF0,
			Strategy:     domain.StrategyConceptDefinition,
			FormatPolicy: domain.FormatBrief,
			Evidence: domain.EvidencePolicy{
				AllowCitations: false,
			},
			Matchers: []domain.Matcher{
				{Phrase: "what is"},
				{Phrase: "define"},
				{Phrase: "meaning of"},
			},
			Fallback: "general",
		},
		{
			ID:           "ideology",
			Label:        "Ideology",
			Domain:       domain.DomainFalsifiable,
			Tier:         domain.TierF1,
			Strategy:     domain.StrategyIdeology,
			FormatPolicy: domain.FormatBrief,
			Evidence: domain.EvidencePolicy{
				AllowCitations: true,
				AllowedKinds:   []domain.Channel{domain.ChannelLexical},
			},
			Matchers: []domain.Matcher{
				{Phrase: "belief graph"},
				{Phrase: "ethos"},
				{Phrase: "ideology"},
			},
			Fallback: "general",
		},
		{
			ID:           "general",
			Label:        "General",
			Domain:       domain.DomainGeneral,
			Tier:         domain.TierF1,
			Strategy:     domain.StrategyHybridExplain,
			FormatPolicy: domain.FormatAuto,
			Evidence:     domain.EvidencePolicy{AllowCitations: true},
		},
	}
}

// TopicProfiles returns the retrieval-scope profile bound to each closed
// topic tag topic.Tagger can assign.
func TopicProfiles() map[topic.Tag]domain.TopicProfile {
	return map[topic.Tag]domain.TopicProfile{
		topic.TagHelixAsk: {
			Tags:                []string{string(topic.TagHelixAsk)},
			AllowlistTiers:      [][]string{{"internal/ask/**", "internal/httpapi/**"}, {"internal/**"}},
			MustIncludePatterns: []string{"internal/ask/pipeline.go"},
			BoostPaths:          []string{"internal/ask/**"},
			MinTierCandidates:   3,
		},
		topic.TagWarp: {
			Tags:              []string{string(topic.TagWarp)},
			AllowlistTiers:    [][]string{{"internal/orchestrator/**"}, {"internal/**"}},
			BoostPaths:        []string{"internal/orchestrator/**"},
			MinTierCandidates: 2,
		},
		topic.TagIdeology: {
			Tags:              []string{string(topic.TagIdeology)},
			AllowlistTiers:    [][]string{{"docs/ideology/**", "docs/**"}},
			DeboostPaths:      []string{"internal/**"},
			MinTierCandidates: 1,
		},
		topic.TagLedger: {
			Tags:              []string{string(topic.TagLedger)},
			AllowlistTiers:    [][]string{{"internal/trajectory/**"}, {"internal/**"}},
			BoostPaths:        []string{"internal/trajectory/**"},
			MinTierCandidates: 2,
		},
		topic.TagStar: {
			Tags:              []string{string(topic.TagStar)},
			AllowlistTiers:    [][]string{{"docs/**"}},
			MinTierCandidates: 1,
		},
		topic.TagConcepts: {
			Tags:              []string{string(topic.TagConcepts)},
			AllowlistTiers:    [][]string{{"docs/glossary/**", "docs/**"}},
			MinTierCandidates: 1,
		},
		topic.TagPhysics: {
			Tags:              []string{string(topic.TagPhysics)},
			AllowlistTiers:    [][]string{{"internal/orchestrator/tools_physics.go"}, {"docs/**"}},
			MinTierCandidates: 1,
		},
	}
}

// ConceptCards returns the closed-vocabulary concept cards the ambiguity
// resolver's pre-intent gate matches a short question against before
// retrieval runs.
func ConceptCards() []concepts.Card {
	return []concepts.Card{
		{
			Name:       "tier",
			Aliases:    []string{"f-tier", "confidence tier"},
			Definition: "The bounded confidence level (F0-F3) an answer envelope carries, set by the intent profile and narrowed by the arbiter.",
			Tags:       []string{string(topic.TagHelixAsk)},
		},
		{
			Name:       "alpha governor",
			Aliases:    []string{"alpha ratio", "trajectory governor"},
			Definition: "The admission control that bounds what share of persisted training trajectories come from orchestrator-triggered variant traffic versus direct live questions.",
			Tags:       []string{string(topic.TagLedger)},
		},
		{
			Name:       "evidence pack",
			Aliases:    []string{"retrieval pack"},
			Definition: "The retriever's fused, diversified set of context blocks passed to the evidence distiller.",
			Tags:       []string{string(topic.TagHelixAsk)},
		},
		{
			Name:       "warp ask",
			Aliases:    []string{"warp-ask"},
			Definition: "The orchestrator plan step that re-enters the Ask pipeline as a sub-call, tagged as variant-origin traffic.",
			Tags:       []string{string(topic.TagWarp)},
		},
	}
}
