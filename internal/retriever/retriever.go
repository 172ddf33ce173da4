// Package retriever implements the hybrid retrieval stage: four scoring
// channels (lexical, symbol, fuzzy, path) fused by weighted
// Reciprocal-Rank-Fusion, diversified by MMR, and descended across a
// topic profile's allowlist tiers until a minimum candidate count and
// must-include coverage are satisfied.
package retriever

import (
	"context"
	"log/slog"

	"basegraph.app/helixask/internal/concepts"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/lattice"
)

// Config holds the tunables spec'd for RRF fusion, MMR diversification
// and the fuzzy channel's similarity floor. Zero-value Config resolves to
// the documented defaults via WithDefaults.
type Config struct {
	RRFK             int
	WeightLexical    float64
	WeightSymbol     float64
	WeightFuzzy      float64
	WeightPath       float64
	FuzzyThreshold   float64
	MMRLambda        float64
	TopK             int
}

// WithDefaults fills zero fields with the spec'd defaults.
func (c Config) WithDefaults() Config {
	if c.RRFK == 0 {
		c.RRFK = 60
	}
	if c.WeightLexical == 0 {
		c.WeightLexical = 1.0
	}
	if c.WeightSymbol == 0 {
		c.WeightSymbol = 0.8
	}
	if c.WeightFuzzy == 0 {
		c.WeightFuzzy = 0.6
	}
	if c.WeightPath == 0 {
		c.WeightPath = 1.5
	}
	if c.FuzzyThreshold == 0 {
		c.FuzzyThreshold = 0.25
	}
	if c.MMRLambda == 0 {
		c.MMRLambda = 0.72
	}
	if c.TopK == 0 {
		c.TopK = 12
	}
	return c
}

// Input is the per-question retrieval request.
type Input struct {
	Question     domain.Question
	Queries      []string
	TopK         int
	TopicProfile domain.TopicProfile
	PlanScope    domain.PlanScope
}

// Retriever runs the hybrid retrieval pipeline over a loaded lattice
// snapshot, with an optional docs-grep fallback and concept-card boosts.
type Retriever struct {
	cfg       Config
	lattice   lattice.Reader
	concepts  *concepts.Store
	docsGrep  *DocsGrepFallback
	typesense Channel
	logger    *slog.Logger
}

// Channel is an alternate source of ranked candidates (e.g. Typesense)
// that plugs into fusion alongside the built-in lexical/symbol/fuzzy/path
// channels.
type Channel interface {
	Name() domain.Channel
	Search(ctx context.Context, query string, universe []lattice.Node) ([]scored, error)
}

func New(cfg Config, reader lattice.Reader, conceptStore *concepts.Store, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		cfg:      cfg.WithDefaults(),
		lattice:  reader,
		concepts: conceptStore,
		logger:   logger,
	}
}

// WithDocsGrepFallback attaches the docs/knowledge/ethos grep fallback
// used when a docs-first scope yields nothing.
func (r *Retriever) WithDocsGrepFallback(f *DocsGrepFallback) *Retriever {
	r.docsGrep = f
	return r
}

// WithTypesenseChannel attaches an alternate lexical channel (Typesense)
// that is fused alongside the built-in channels when configured.
func (r *Retriever) WithTypesenseChannel(c Channel) *Retriever {
	r.typesense = c
	return r
}

// Retrieve runs the full hybrid retrieval contract: per-tier fusion and
// MMR diversification, tier descent, and the docs-first/docs-grep
// fallback, producing an Evidence Pack.
func (r *Retriever) Retrieve(ctx context.Context, in Input) (domain.EvidencePack, error) {
	topK := in.TopK
	if topK <= 0 {
		topK = r.cfg.TopK
	}

	nodes, err := r.lattice.Load(ctx)
	if err != nil {
		return domain.EvidencePack{}, err
	}
	snap := lattice.NewSnapshot(nodes)

	if in.PlanScope.DocsFirst {
		pack, ok := r.retrieveDocsFirst(ctx, in, snap, topK)
		if ok {
			return pack, nil
		}
	}

	tiers := in.TopicProfile.AllowlistTiers
	if len(tiers) == 0 {
		return r.retrieveInUniverse(ctx, in, snap.Nodes, topK, 0)
	}

	var last domain.EvidencePack
	for i, tier := range tiers {
		universe := filterByGlobs(snap.Nodes, tier)
		pack, err := r.retrieveInUniverse(ctx, in, universe, topK, i)
		if err != nil {
			return domain.EvidencePack{}, err
		}
		last = pack
		if len(pack.Files) >= in.TopicProfile.MinTierCandidates && pack.MustIncludeOK {
			return pack, nil
		}
	}

	last.MustIncludeOK = false
	return last, nil
}

func (r *Retriever) retrieveDocsFirst(ctx context.Context, in Input, snap *lattice.Snapshot, topK int) (domain.EvidencePack, bool) {
	universe := filterByGlobs(snap.Nodes, in.PlanScope.DocsAllowlist)
	if len(universe) > 0 {
		pack, err := r.retrieveInUniverse(ctx, in, universe, topK, 0)
		if err == nil && len(pack.Files) > 0 {
			return pack, true
		}
	}

	if r.docsGrep == nil {
		return domain.EvidencePack{}, false
	}

	candidates, err := r.docsGrep.Search(ctx, in.Queries)
	if err != nil || len(candidates) == 0 {
		return domain.EvidencePack{}, false
	}
	diversified := mmrDiversify(candidates, topK, r.cfg.MMRLambda)
	pack := buildEvidencePack(diversified, 0, allMustIncludeSatisfied(diversified, in))
	return pack, true
}

// retrieveInUniverse runs all channels over the given node universe for
// every query, fuses with weighted RRF, applies boosts/deboosts and
// concept fast-path, then diversifies with MMR.
func (r *Retriever) retrieveInUniverse(ctx context.Context, in Input, universe []lattice.Node, topK, tierIdx int) (domain.EvidencePack, error) {
	state := newFusionState()
	queryHits := map[string]struct{}{}

	for _, query := range in.Queries {
		tokens := queryTokens(query)
		pathHints := pathHintsFromQuery(query)

		lexRanked := rankByScore(universe, func(n lattice.Node) float64 { return lexicalScore(n, tokens) })
		symRanked := rankByScore(universe, func(n lattice.Node) float64 { return symbolScore(n, tokens) })
		fuzzyRanked := rankByScore(universe, func(n lattice.Node) float64 { return fuzzyScore(n, query, r.cfg.FuzzyThreshold) })
		pathRanked := rankByScore(universe, func(n lattice.Node) float64 { return pathScore(n, pathHints) })

		applyRRF(state, lexRanked, domain.ChannelLexical, r.cfg.WeightLexical, r.cfg.RRFK)
		applyRRF(state, symRanked, domain.ChannelSymbol, r.cfg.WeightSymbol, r.cfg.RRFK)
		applyRRF(state, fuzzyRanked, domain.ChannelFuzzy, r.cfg.WeightFuzzy, r.cfg.RRFK)
		applyRRF(state, pathRanked, domain.ChannelPath, r.cfg.WeightPath, r.cfg.RRFK)

		if r.typesense != nil {
			tsRanked, err := r.typesense.Search(ctx, query, universe)
			if err == nil {
				tsItems := make([]rankedItem, 0, len(tsRanked))
				for _, s := range tsRanked {
					tsItems = append(tsItems, rankedItem{Node: lattice.Node{FilePath: s.FilePath}, Score: s.RRFScore})
				}
				applyRRF(state, tsItems, r.typesense.Name(), r.cfg.WeightLexical, r.cfg.RRFK)
			} else {
				r.logger.WarnContext(ctx, "typesense channel search failed", "error", err)
			}
		}

		for path := range state.candidates {
			if containsAnyToken(path, tokens) {
				queryHits[path] = struct{}{}
			}
		}
	}

	applyBoosts(state, in.TopicProfile.BoostPaths, in.TopicProfile.DeboostPaths)
	applyConceptFastPath(state, r.concepts, in.Question.Text())

	list := make([]scored, 0, len(state.candidates))
	for _, s := range state.candidates {
		list = append(list, *s)
	}

	diversified := mmrDiversify(list, topK, r.cfg.MMRLambda)
	ok := allMustIncludeSatisfied(diversified, in) && mustIncludeGlobsSatisfied(diversified, in.PlanScope.MustIncludeGlobs)
	pack := buildEvidencePack(diversified, tierIdx, ok)
	pack.QueryHitCount = len(queryHits)
	pack.ChannelHits = state.channelHits
	pack.ChannelTopScores = state.channelTopScores
	return pack, nil
}
