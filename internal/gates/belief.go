package gates

import (
	"regexp"
	"strings"

	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/internal/normalize"
)

var (
	sentenceBoundary = regexp.MustCompile(`(?:[.!?]+\s+|\n+)`)
	conclusionLead   = regexp.MustCompile(`(?i)^(therefore|thus|so|in practice|in short|overall)\b`)
	definitionLead   = definitionVocab
	negationWord     = regexp.MustCompile(`(?i)\b(not|isn't|doesn't|cannot|can't|never|no longer)\b`)
)

// BeliefNodeKind classifies one sentence of an answer for belief-graph
// purposes.
type BeliefNodeKind string

const (
	BeliefClaim      BeliefNodeKind = "claim"
	BeliefDefinition BeliefNodeKind = "definition"
	BeliefConclusion BeliefNodeKind = "conclusion"
)

// BeliefNode is one sentence extracted from the answer, classified and
// checked for context support.
type BeliefNode struct {
	Text      string
	Kind      BeliefNodeKind
	Supported bool
}

// BeliefEdge relates two nodes; Contradicts edges are what the gate
// rejects on.
type BeliefEdge struct {
	From, To int
	Relation string // supports, contradicts, depends_on, maps_to
}

// BeliefGraph is the answer's sentences plus the support/contradiction
// edges between them.
type BeliefGraph struct {
	Nodes []BeliefNode
	Edges []BeliefEdge
}

// BuildBeliefGraph splits the answer into sentences, classifies each, and
// checks support against the context's token vocabulary.
func BuildBeliefGraph(answer, context string) BeliefGraph {
	contextSet := normalize.TokenSet(context)
	sentences := sentenceBoundary.Split(strings.TrimSpace(answer), -1)

	g := BeliefGraph{}
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		kind := BeliefClaim
		switch {
		case conclusionLead.MatchString(s):
			kind = BeliefConclusion
		case definitionLead.MatchString(s):
			kind = BeliefDefinition
		}

		tokens := normalize.ContentTokens(s)
		matched := 0
		for _, tok := range tokens {
			if _, ok := contextSet[tok]; ok {
				matched++
			}
		}
		supported := len(tokens) == 0 || float64(matched)/float64(len(tokens)) >= 0.2

		g.Nodes = append(g.Nodes, BeliefNode{Text: s, Kind: kind, Supported: supported})
	}

	g.Edges = detectContradictions(g.Nodes)
	return g
}

// detectContradictions flags sentence pairs that share most of their
// content vocabulary but disagree on negation, a cheap proxy for the
// answer asserting and then denying the same thing.
func detectContradictions(nodes []BeliefNode) []BeliefEdge {
	var edges []BeliefEdge
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			if negationWord.MatchString(a.Text) == negationWord.MatchString(b.Text) {
				continue
			}
			if jaccard(normalize.TokenSet(a.Text), normalize.TokenSet(b.Text)) >= 0.5 {
				edges = append(edges, BeliefEdge{From: i, To: j, Relation: "contradicts"})
			}
		}
	}
	return edges
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Belief runs the belief/belief-graph gate: fails when the unsupported
// claim rate exceeds the threshold or any contradiction edge exists.
func Belief(r *Report, answer, context string, cfg config.GatesConfig) (BeliefGraph, bool) {
	graph := BuildBeliefGraph(answer, context)

	claimCount, unsupported := 0, 0
	for _, n := range graph.Nodes {
		if n.Kind != BeliefClaim {
			continue
		}
		claimCount++
		if !n.Supported {
			unsupported++
		}
	}

	unsupportedRate := 0.0
	if claimCount > 0 {
		unsupportedRate = float64(unsupported) / float64(claimCount)
	}

	hasContradiction := len(graph.Edges) > 0
	passed := unsupportedRate <= cfg.BeliefUnsupportedRatio && !hasContradiction

	metrics := map[string]float64{
		"unsupported_rate": unsupportedRate,
		"claim_count":      float64(claimCount),
		"contradictions":   float64(len(graph.Edges)),
	}
	if passed {
		r.pass("belief", metrics)
	} else {
		r.fail("belief", "answer has unsupported claims or internal contradictions", metrics)
	}
	return graph, passed
}
