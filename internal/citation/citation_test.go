package citation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/common/llm"
	"basegraph.app/helixask/internal/citation"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/overflow"
)

type fakeClient struct {
	text string
	err  error
}

func (f *fakeClient) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	return nil, nil
}

func (f *fakeClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Text: f.text}, nil
}

func (f *fakeClient) Model() string { return "fake" }

func evidenceWithCitation() domain.DistilledEvidence {
	return domain.DistilledEvidence{
		Bullets: []domain.EvidenceBullet{
			{Text: "fuses channels with RRF", Citation: "internal/retriever/retriever.go"},
		},
	}
}

func TestShouldFireNoOpWhenAnswerAlreadyCites(t *testing.T) {
	in := citation.Input{
		Answer:         "See internal/retriever/retriever.go for the fusion logic.",
		Evidence:       evidenceWithCitation(),
		AllowCitations: true,
	}
	assert.False(t, citation.ShouldFire(in))
}

func TestShouldFireNoOpWhenCitationsDisallowed(t *testing.T) {
	in := citation.Input{
		Answer:         "The retriever fuses four channels.",
		Evidence:       evidenceWithCitation(),
		AllowCitations: false,
	}
	assert.False(t, citation.ShouldFire(in))
}

func TestShouldFireNoOpWhenEvidenceHasNoCitations(t *testing.T) {
	in := citation.Input{
		Answer:         "The retriever fuses four channels.",
		Evidence:       domain.DistilledEvidence{Bullets: []domain.EvidenceBullet{{Text: "fuses channels"}}},
		AllowCitations: true,
	}
	assert.False(t, citation.ShouldFire(in))
}

func TestRepairReplacesAnswerWhenFixSucceeds(t *testing.T) {
	client := &fakeClient{text: "FIXED_START\nThe retriever fuses four channels, see internal/retriever/retriever.go.\nFIXED_END"}
	runner := overflow.New(client, overflow.Config{ContextCapacityTokens: 100000})
	r := citation.New(runner)

	answer, _, err := r.Repair(context.Background(), citation.Input{
		Question:       domain.Question{Prompt: "How does retrieval work?"},
		Answer:         "The retriever fuses four channels.",
		Evidence:       evidenceWithCitation(),
		AllowCitations: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "The retriever fuses four channels, see internal/retriever/retriever.go.", answer)
}

func TestRepairFallsBackToOriginalOnEmptyFix(t *testing.T) {
	client := &fakeClient{text: "FIXED_START\n\nFIXED_END"}
	runner := overflow.New(client, overflow.Config{ContextCapacityTokens: 100000})
	r := citation.New(runner)

	original := "The retriever fuses four channels."
	answer, _, err := r.Repair(context.Background(), citation.Input{
		Answer:         original,
		Evidence:       evidenceWithCitation(),
		AllowCitations: true,
	})

	require.NoError(t, err)
	assert.Equal(t, original, answer)
}

func TestRepairFallsBackToOriginalOnLLMFailure(t *testing.T) {
	client := &fakeClient{err: assert.AnError}
	runner := overflow.New(client, overflow.Config{ContextCapacityTokens: 100000})
	r := citation.New(runner)

	original := "The retriever fuses four channels."
	answer, _, err := r.Repair(context.Background(), citation.Input{
		Answer:         original,
		Evidence:       evidenceWithCitation(),
		AllowCitations: true,
	})

	require.Error(t, err)
	assert.Equal(t, original, answer)
}
