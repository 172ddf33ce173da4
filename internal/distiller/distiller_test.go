package distiller_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/common/llm"
	"basegraph.app/helixask/internal/distiller"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/overflow"
)

type fakeClient struct {
	text string
}

func (f *fakeClient) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	return nil, nil
}

func (f *fakeClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Text: f.text}, nil
}

func (f *fakeClient) Model() string { return "fake" }

func TestDistillParsesCitedBullets(t *testing.T) {
	client := &fakeClient{text: "- The retriever fuses channels with RRF, see internal/retriever/retriever.go\n" +
		"- Unrelated bullet with no citation at all\n" +
		"1. Tokenization strips stopwords, see normalize.go\n"}
	runner := overflow.New(client, overflow.Config{ContextCapacityTokens: 100000})
	d := distiller.New(runner)

	result, _, err := d.Distill(context.Background(), distiller.Input{
		Question: domain.Question{Prompt: "How does retrieval work?"},
		Evidence: domain.EvidencePack{Files: []string{"internal/retriever/retriever.go", "internal/normalize/normalize.go"}},
	})

	require.NoError(t, err)
	require.Len(t, result.Bullets, 2)
	assert.Equal(t, "internal/retriever/retriever.go", result.Bullets[0].Citation)
	assert.Equal(t, "internal/normalize/normalize.go", result.Bullets[1].Citation)
}

func TestIsNonUIQuestion(t *testing.T) {
	assert.True(t, distiller.IsNonUIQuestion("How does the retriever score candidates?"))
	assert.False(t, distiller.IsNonUIQuestion("Why is the React component in ui/components/Badge.tsx broken?"))
}
