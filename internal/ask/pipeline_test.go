package ask_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/internal/ask"
	"basegraph.app/helixask/internal/citation"
	"basegraph.app/helixask/internal/concepts"
	"basegraph.app/helixask/internal/distiller"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/gates"
	"basegraph.app/helixask/internal/intent"
	"basegraph.app/helixask/internal/overflow"
	"basegraph.app/helixask/internal/retriever"
	"basegraph.app/helixask/internal/synthesizer"
	"basegraph.app/helixask/internal/topic"
)

type fakeRetriever struct {
	pack domain.EvidencePack
	err  error
}

func (f fakeRetriever) Retrieve(_ context.Context, _ retriever.Input) (domain.EvidencePack, error) {
	return f.pack, f.err
}

type fakeDistiller struct {
	out domain.DistilledEvidence
}

func (f fakeDistiller) Distill(_ context.Context, _ distiller.Input) (domain.DistilledEvidence, overflow.Debug, error) {
	return f.out, overflow.Debug{}, nil
}

type fakeSynthesizer struct {
	text string
}

func (f fakeSynthesizer) Synthesize(_ context.Context, _ synthesizer.Input) (string, overflow.Debug, error) {
	return f.text, overflow.Debug{}, nil
}

type passthroughCitation struct{}

func (passthroughCitation) Repair(_ context.Context, in citation.Input) (string, overflow.Debug, error) {
	return in.Answer, overflow.Debug{}, nil
}

func testProfiles() []domain.IntentProfile {
	return []domain.IntentProfile{
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

func newTestPipeline(retr ask.Retriever, dist ask.Distiller, synth ask.Synthesizer) *ask.Pipeline {
	return &ask.Pipeline{
		Config:        config.Config{Gates: config.GatesConfig{EvidenceMinRatio: 0, EvidenceMinTokens: 0, AmbiguityShortTokens: 0}, Arbiter: config.ArbiterConfig{RepoThreshold: 0.62, HybridThreshold: 0.35}},
		Intent:        intent.NewDirectory(testProfiles()),
		Tagger:        topic.NewTagger(),
		TopicProfiles: topic.NewProfiler(map[topic.Tag]domain.TopicProfile{}),
		Concepts:      &concepts.Store{},
		Retriever:     retr,
		Distiller:     dist,
		Synthesizer:   synth,
		Citation:      passthroughCitation{},
		Arbiter:       gates.NewArbiter(config.ArbiterConfig{RepoThreshold: 0.62, HybridThreshold: 0.35}),
	}
}

func TestAnswerShortCircuitsOnPreIntentAmbiguity(t *testing.T) {
	p := newTestPipeline(fakeRetriever{}, fakeDistiller{}, fakeSynthesizer{})
	p.Config.Gates.AmbiguityShortTokens = 3
	p.Config.Gates.AmbiguityMinScore = 0.9
	p.Config.Gates.AmbiguityMarginMin = 0.5

	result, err := p.Answer(context.Background(), domain.Question{Prompt: "warp?"})
	require.NoError(t, err)
	assert.True(t, result.Gates.Clarify)
	assert.NotEmpty(t, result.Envelope.AnswerText)
}

func TestAnswerHappyPathProducesEnvelope(t *testing.T) {
	pack := domain.EvidencePack{
		Files:         []string{"internal/retriever/retriever.go"},
		Blocks:        []domain.ContextBlock{{Header: "internal/retriever/retriever.go", Preview: "package retriever fuses channels"}},
		MustIncludeOK: true,
		TopScore:      0.8,
	}
	distilled := domain.DistilledEvidence{
		Bullets: []domain.EvidenceBullet{{Text: "the retriever fuses channels", Citation: "internal/retriever/retriever.go"}},
	}

	p := newTestPipeline(
		fakeRetriever{pack: pack},
		fakeDistiller{out: distilled},
		fakeSynthesizer{text: "ANSWER_STARTThe retriever fuses four channels via RRF.ANSWER_END"},
	)

	result, err := p.Answer(context.Background(), domain.Question{Prompt: "how does the retriever fuse channels?"})
	require.NoError(t, err)
	assert.False(t, result.Gates.Clarify)
	assert.Contains(t, result.Envelope.AnswerText, "RRF")
	assert.Equal(t, []string{"internal/retriever/retriever.go"}, result.Envelope.EvidenceRefs)
}

func TestAnswerClarifiesWhenRepoHintedEvidenceIsEmpty(t *testing.T) {
	p := newTestPipeline(fakeRetriever{pack: domain.EvidencePack{}}, fakeDistiller{}, fakeSynthesizer{})

	result, err := p.Answer(context.Background(), domain.Question{Prompt: "which file defines internal/retriever/retriever.go?"})
	require.NoError(t, err)
	assert.True(t, result.Gates.Clarify)
}
