package retriever

import (
	"regexp"
	"strings"
	"sync"

	"basegraph.app/helixask/internal/concepts"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/lattice"
)

const conceptFastPathBoost = 0.5

// applyBoosts multiplies or deboosts a fused candidate's score when its
// file path matches a topic profile's boost/deboost glob list.
func applyBoosts(state *fusionState, boostPaths, deboostPaths []string) {
	for _, c := range state.candidates {
		if matchesAnyGlob(c.FilePath, boostPaths) {
			c.RRFScore *= 1.25
		}
		if matchesAnyGlob(c.FilePath, deboostPaths) {
			c.RRFScore *= 0.5
		}
	}
}

// applyConceptFastPath boosts candidates whose path is a matched concept
// card's declared source, so a strongly-matched concept's own definition
// file rises above incidental mentions.
func applyConceptFastPath(state *fusionState, store *concepts.Store, questionText string) {
	if store == nil {
		return
	}
	card, score := store.Match(questionText)
	if score <= 0 {
		return
	}
	for _, path := range card.SourcePaths {
		if c, ok := state.candidates[path]; ok {
			c.RRFScore += conceptFastPathBoost * score
		}
	}
}

// mmrDiversify repeatedly selects the candidate maximizing
// λ·rrfScore − (1−λ)·max_sim(picked), where similarity is path-token
// Jaccard against already-picked candidates, until topK are chosen or the
// pool is exhausted.
func mmrDiversify(pool []scored, topK int, lambda float64) []scored {
	remaining := make([]scored, len(pool))
	copy(remaining, pool)

	var picked []scored
	for len(picked) < topK && len(remaining) > 0 {
		bestIdx := -1
		bestValue := 0.0
		for i, cand := range remaining {
			sim := maxPathSimilarity(cand.FilePath, picked)
			value := lambda*cand.RRFScore - (1-lambda)*sim
			if bestIdx == -1 || value > bestValue {
				bestIdx = i
				bestValue = value
			}
		}
		picked = append(picked, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return picked
}

func maxPathSimilarity(path string, picked []scored) float64 {
	tokens := pathTokenSet(path)
	best := 0.0
	for _, p := range picked {
		sim := jaccard(tokens, pathTokenSet(p.FilePath))
		if sim > best {
			best = sim
		}
	}
	return best
}

func pathTokenSet(path string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, part := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '.' || r == '_' || r == '-'
	}) {
		set[strings.ToLower(part)] = struct{}{}
	}
	return set
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

// filterByGlobs restricts nodes to those whose file path matches at least
// one pattern in the tier (an ordered group of path-pattern globs).
func filterByGlobs(nodes []lattice.Node, globs []string) []lattice.Node {
	if len(globs) == 0 {
		return nodes
	}
	out := make([]lattice.Node, 0, len(nodes))
	for _, n := range nodes {
		if matchesAnyGlob(n.FilePath, globs) {
			out = append(out, n)
		}
	}
	return out
}

// MatchGlob exposes the retriever's glob matcher for other pipeline stages
// that need to test a file path against a must-include or anchor pattern
// using the same "**"/"*" semantics as allowlist tiers.
func MatchGlob(pattern, path string) bool {
	return matchGlob(pattern, path)
}

func matchesAnyGlob(path string, globs []string) bool {
	for _, g := range globs {
		if matchGlob(g, path) {
			return true
		}
	}
	return false
}

// matchGlob supports "**" (any run of characters, including "/") and "*"
// (any run of characters excluding "/"), the two wildcard shapes used by
// allowlist tiers and boost/deboost lists. A pattern with no wildcard is
// treated as a plain substring match against the path.
func matchGlob(pattern, path string) bool {
	if !strings.ContainsAny(pattern, "*") {
		return strings.Contains(path, pattern)
	}
	return globRegexp(pattern).MatchString(path)
}

var (
	globCacheMu sync.Mutex
	globCache   = map[string]*regexp.Regexp{}
)

const doubleStarPlaceholder = "\x00DOUBLESTAR\x00"

func globRegexp(pattern string) *regexp.Regexp {
	globCacheMu.Lock()
	defer globCacheMu.Unlock()

	if re, ok := globCache[pattern]; ok {
		return re
	}

	withPlaceholder := strings.ReplaceAll(pattern, "**", doubleStarPlaceholder)
	escaped := regexp.QuoteMeta(withPlaceholder)
	escaped = strings.ReplaceAll(escaped, regexp.QuoteMeta(doubleStarPlaceholder), ".*")
	escaped = strings.ReplaceAll(escaped, `\*`, "[^/]*")

	re := regexp.MustCompile("^" + escaped + "$")
	globCache[pattern] = re
	return re
}

func allMustIncludeSatisfied(selected []scored, in Input) bool {
	must := append([]string{}, in.TopicProfile.MustIncludeFiles...)
	if len(must) == 0 && len(in.TopicProfile.MustIncludePatterns) == 0 {
		return true
	}

	selectedPaths := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		selectedPaths[s.FilePath] = struct{}{}
	}

	for _, f := range must {
		if _, ok := selectedPaths[f]; !ok {
			return false
		}
	}
	for _, pat := range in.TopicProfile.MustIncludePatterns {
		found := false
		for path := range selectedPaths {
			if matchGlob(pat, path) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func mustIncludeGlobsSatisfied(selected []scored, globs []string) bool {
	if len(globs) == 0 {
		return true
	}
	for _, g := range globs {
		found := false
		for _, s := range selected {
			if matchGlob(g, s.FilePath) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func buildEvidencePack(selected []scored, tierUsed int, mustIncludeOK bool) domain.EvidencePack {
	blocks := make([]domain.ContextBlock, 0, len(selected))
	files := make([]string, 0, len(selected))
	for _, s := range selected {
		blocks = append(blocks, domain.ContextBlock{Header: s.FilePath, Preview: s.Preview})
		files = append(files, s.FilePath)
	}

	var topScore, scoreGap float64
	if len(selected) > 0 {
		topScore = selected[0].RRFScore
		if len(selected) > 1 {
			scoreGap = selected[0].RRFScore - selected[1].RRFScore
		}
	}

	return domain.EvidencePack{
		Blocks:        blocks,
		Files:         files,
		TopicTierUsed: tierUsed,
		MustIncludeOK: mustIncludeOK,
		TopScore:      topScore,
		ScoreGap:      scoreGap,
	}
}
