// Package longprompt ingests an attached long-form prompt document into
// retrievable chunks when it is too large to pass through whole: split
// into semantic blocks, pack into overlapping chunks, score with a
// keyword channel and a hash-embedding channel, and fuse the two with
// the same RRF+MMR machinery the hybrid retriever uses.
package longprompt

import (
	"crypto/sha1"
	"fmt"
	"math"
	"strings"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/normalize"
)

const embeddingDims = 128

// Config controls chunk sizing and the ingestion trigger.
type Config struct {
	ChunkChars      int
	ChunkOverlap    int
	IngestThreshold int
	TopM            int
	RRFK            int
	MMRLambda       float64
}

func (c Config) withDefaults() Config {
	if c.ChunkChars == 0 {
		c.ChunkChars = 4000
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 400
	}
	if c.IngestThreshold == 0 {
		c.IngestThreshold = 40 * 1024
	}
	if c.TopM == 0 {
		c.TopM = 8
	}
	if c.RRFK == 0 {
		c.RRFK = 60
	}
	if c.MMRLambda == 0 {
		c.MMRLambda = 0.72
	}
	return c
}

// Chunk is one retrievable unit of an ingested long prompt.
type Chunk struct {
	ID   string
	Text string
}

// Ingester splits and indexes an attached prompt document.
type Ingester struct {
	cfg Config
}

func New(cfg Config) *Ingester {
	return &Ingester{cfg: cfg.withDefaults()}
}

// ShouldIngest reports whether the attached prompt is long enough to
// warrant chunked ingestion rather than being passed through whole.
func (ig *Ingester) ShouldIngest(prompt string) bool {
	return len(prompt) >= ig.cfg.IngestThreshold
}

// Split breaks prompt into semantic blocks along markdown headings,
// keeping fenced code blocks intact, then packs the blocks into
// overlapping chunks of about ChunkChars.
func (ig *Ingester) Split(prompt string) []Chunk {
	blocks := semanticBlocks(prompt)
	packed := packBlocks(blocks, ig.cfg.ChunkChars, ig.cfg.ChunkOverlap)

	digest := fmt.Sprintf("%x", sha1.Sum([]byte(prompt)))[:12]
	chunks := make([]Chunk, len(packed))
	for i, text := range packed {
		chunks[i] = Chunk{
			ID:   fmt.Sprintf("prompt/longprompt/%s/chunk-%04d.md", digest, i),
			Text: text,
		}
	}
	return chunks
}

// Retrieve scores chunks against queries with a keyword channel and an
// embedding channel, fuses both with weighted RRF, and MMR-diversifies
// the result into an Evidence Pack whose "files" are chunk ids.
func (ig *Ingester) Retrieve(prompt string, queries []string) domain.EvidencePack {
	chunks := ig.Split(prompt)
	if len(chunks) == 0 {
		return domain.EvidencePack{}
	}

	state := make(map[string]*fusedChunk, len(chunks))

	for _, query := range queries {
		tokens := normalize.ContentTokens(query)
		queryVec := hashEmbed(tokens)

		keywordRanked := rankChunks(chunks, func(c Chunk) float64 { return keywordScore(c.Text, tokens) })
		embedRanked := rankChunks(chunks, func(c Chunk) float64 { return embeddingScore(c.Text, queryVec) })

		fuseInto(state, keywordRanked, 1.0, ig.cfg.RRFK)
		fuseInto(state, embedRanked, 1.0, ig.cfg.RRFK)
	}

	pool := make([]pooledChunk, 0, len(state))
	for _, f := range state {
		pool = append(pool, pooledChunk{chunk: f.chunk, score: f.rrfScore})
	}

	selected := mmrDiversifyChunks(pool, ig.cfg.TopM, ig.cfg.MMRLambda)

	blocks := make([]domain.ContextBlock, 0, len(selected))
	files := make([]string, 0, len(selected))
	for _, s := range selected {
		blocks = append(blocks, domain.ContextBlock{Header: s.chunk.ID, Preview: s.chunk.Text})
		files = append(files, s.chunk.ID)
	}

	var topScore, scoreGap float64
	if len(selected) > 0 {
		topScore = selected[0].score
		if len(selected) > 1 {
			scoreGap = selected[0].score - selected[1].score
		}
	}

	return domain.EvidencePack{
		Blocks:        blocks,
		Files:         files,
		MustIncludeOK: true,
		TopScore:      topScore,
		ScoreGap:      scoreGap,
	}
}

// fusedChunk accumulates RRF contributions for one chunk across the
// keyword and embedding channels.
type fusedChunk struct {
	chunk    Chunk
	rrfScore float64
}

func fuseInto(state map[string]*fusedChunk, ranked []rankedChunk, weight float64, k int) {
	for rank, item := range ranked {
		s, ok := state[item.chunk.ID]
		if !ok {
			s = &fusedChunk{chunk: item.chunk}
			state[item.chunk.ID] = s
		}
		s.rrfScore += weight / float64(k+rank+1)
	}
}

type rankedChunk struct {
	chunk Chunk
	score float64
}

func rankChunks(chunks []Chunk, score func(Chunk) float64) []rankedChunk {
	out := make([]rankedChunk, 0, len(chunks))
	for _, c := range chunks {
		s := score(c)
		if s <= 0 {
			continue
		}
		out = append(out, rankedChunk{chunk: c, score: s})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].score > out[j-1].score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// keywordScore is the fraction of query tokens present in the chunk text.
func keywordScore(text string, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

// embeddingScore is the dot product of the chunk's hash embedding and the
// query's hash embedding, normalized to [0,1] via cosine similarity.
func embeddingScore(text string, queryVec [embeddingDims]float64) float64 {
	chunkVec := hashEmbed(normalize.ContentTokens(text))
	dot, normA, normB := 0.0, 0.0, 0.0
	for i := 0; i < embeddingDims; i++ {
		dot += chunkVec[i] * queryVec[i]
		normA += chunkVec[i] * chunkVec[i]
		normB += queryVec[i] * queryVec[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		cos = 0
	}
	return cos
}

// hashEmbed produces a stable 128-dim bag-of-hashed-tokens embedding: each
// token is hashed into a dimension bucket and increments it, giving a
// cheap fixed-size vector with no model dependency.
func hashEmbed(tokens []string) [embeddingDims]float64 {
	var vec [embeddingDims]float64
	for _, t := range tokens {
		h := sha1.Sum([]byte(t))
		bucket := int(h[0])<<8 | int(h[1])
		vec[bucket%embeddingDims]++
	}
	return vec
}
