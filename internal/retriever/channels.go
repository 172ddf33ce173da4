package retriever

import (
	"strings"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/lattice"
	"basegraph.app/helixask/internal/normalize"
)

// scored is a fused candidate accumulating RRF contributions across
// queries and channels.
type scored struct {
	FilePath string
	Preview  string
	RRFScore float64
}

// rankedItem is one channel's scored view of a node before RRF fusion.
type rankedItem struct {
	Node  lattice.Node
	Score float64
}

// fusionState tracks fused candidates plus the channel-level hit counts
// and top scores the Evidence Pack reports.
type fusionState struct {
	candidates       map[string]*scored
	channelHits      map[domain.Channel]int
	channelTopScores map[domain.Channel]float64
}

func newFusionState() *fusionState {
	return &fusionState{
		candidates:       map[string]*scored{},
		channelHits:      map[domain.Channel]int{},
		channelTopScores: map[domain.Channel]float64{},
	}
}

func queryTokens(query string) []string {
	return normalize.ContentTokens(query)
}

func pathHintsFromQuery(query string) []string {
	return normalize.DetectFilePathHints(query)
}

func containsAnyToken(path string, tokens []string) bool {
	lower := strings.ToLower(path)
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// lexicalScore weights matches across symbol, file path, signature, doc
// and snippet, heaviest on symbol and file path.
func lexicalScore(n lattice.Node, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var score float64
	fields := []struct {
		text   string
		weight float64
	}{
		{n.Symbol, 3},
		{n.FilePath, 2},
		{n.Signature, 2},
		{n.Doc, 1},
		{n.Snippet, 1},
	}
	for _, f := range fields {
		hits := countTokenHits(f.text, tokens)
		score += f.weight * float64(hits)
	}
	return score / float64(len(tokens))
}

// symbolScore puts all weight on symbol and signature, used to surface
// exact API-shaped matches above prose hits.
func symbolScore(n lattice.Node, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hits := countTokenHits(n.Symbol, tokens)*3 + countTokenHits(n.Signature, tokens)*2
	return float64(hits) / float64(len(tokens))
}

// fuzzyScore is the max trigram-Jaccard similarity between the raw query
// and the node's file path, symbol, or signature, zeroed below threshold.
func fuzzyScore(n lattice.Node, query string, threshold float64) float64 {
	best := 0.0
	for _, field := range []string{n.FilePath, n.Symbol, n.Signature} {
		if field == "" {
			continue
		}
		sim := normalize.TrigramJaccard(query, field)
		if sim > best {
			best = sim
		}
	}
	if best < threshold {
		return 0
	}
	return best
}

// pathScore matches explicit path hints extracted from the query against
// the node's file path.
func pathScore(n lattice.Node, pathHints []string) float64 {
	if len(pathHints) == 0 || n.FilePath == "" {
		return 0
	}
	for _, hint := range pathHints {
		if n.FilePath == hint {
			return 1.0
		}
		if strings.HasSuffix(n.FilePath, hint) || strings.Contains(n.FilePath, hint) {
			return 0.6
		}
	}
	return 0
}

func countTokenHits(text string, tokens []string) int {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			hits++
		}
	}
	return hits
}

// rankByScore scores every node, drops zero/negative scores, and returns
// the result sorted by descending score (the channel's rank order).
func rankByScore(nodes []lattice.Node, score func(lattice.Node) float64) []rankedItem {
	out := make([]rankedItem, 0, len(nodes))
	for _, n := range nodes {
		s := score(n)
		if s <= 0 {
			continue
		}
		out = append(out, rankedItem{Node: n, Score: s})
	}
	sortByScoreDesc(out)
	return out
}

func sortByScoreDesc(items []rankedItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Score > items[j-1].Score; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// applyRRF folds one channel's ranked list into the fusion state using
// weighted Reciprocal-Rank-Fusion: score += weight / (k + rank + 1).
func applyRRF(state *fusionState, ranked []rankedItem, channel domain.Channel, weight float64, k int) {
	for rank, item := range ranked {
		contribution := weight / float64(k+rank+1)

		c, ok := state.candidates[item.Node.FilePath]
		if !ok {
			c = &scored{FilePath: item.Node.FilePath, Preview: preview(item.Node)}
			state.candidates[item.Node.FilePath] = c
		}
		c.RRFScore += contribution

		state.channelHits[channel]++
		if item.Score > state.channelTopScores[channel] {
			state.channelTopScores[channel] = item.Score
		}
	}
}

func preview(n lattice.Node) string {
	if n.Snippet != "" {
		return n.Snippet
	}
	if n.Doc != "" {
		return n.Doc
	}
	return n.Signature
}
