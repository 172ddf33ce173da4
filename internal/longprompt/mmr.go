package longprompt

import "basegraph.app/helixask/internal/normalize"

// pooledChunk is a chunk with its fused RRF score, ready for MMR selection.
type pooledChunk struct {
	chunk Chunk
	score float64
}

// mmrDiversifyChunks applies the same λ·score − (1−λ)·max_sim(picked)
// selection rule the hybrid retriever uses, with similarity measured as
// token-set Jaccard over chunk text instead of path tokens.
func mmrDiversifyChunks(pool []pooledChunk, topM int, lambda float64) []pooledChunk {
	remaining := make([]pooledChunk, len(pool))
	copy(remaining, pool)

	var picked []pooledChunk
	for len(picked) < topM && len(remaining) > 0 {
		bestIdx := -1
		bestValue := 0.0
		for i, cand := range remaining {
			sim := maxTextSimilarity(cand.chunk.Text, picked)
			value := lambda*cand.score - (1-lambda)*sim
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

func maxTextSimilarity(text string, picked []pooledChunk) float64 {
	set := normalize.TokenSet(text)
	best := 0.0
	for _, p := range picked {
		sim := jaccardSets(set, normalize.TokenSet(p.chunk.Text))
		if sim > best {
			best = sim
		}
	}
	return best
}

func jaccardSets(a, b map[string]struct{}) float64 {
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
