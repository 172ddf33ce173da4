package ask_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/jobstore"
	"basegraph.app/helixask/internal/stream"
)

func waitForStatus(t *testing.T, store jobstore.Store, jobID string, want domain.JobStatus) domain.JobRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := store.Get(context.Background(), jobID)
		require.NoError(t, err)
		if rec.Status == want {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach status %s in time", jobID, want)
	return domain.JobRecord{}
}

func TestRunJobCompletesAndAppendsPartials(t *testing.T) {
	pack := domain.EvidencePack{
		Files:  []string{"internal/retriever/retriever.go"},
		Blocks: []domain.ContextBlock{{Header: "internal/retriever/retriever.go", Preview: "fuses channels"}},
	}
	distilled := domain.DistilledEvidence{
		Bullets: []domain.EvidenceBullet{{Text: "it fuses channels", Citation: "internal/retriever/retriever.go"}},
	}
	p := newTestPipeline(
		fakeRetriever{pack: pack},
		fakeDistiller{out: distilled},
		fakeSynthesizer{text: "The retriever fuses four channels."},
	)

	store := jobstore.NewMemoryStore()
	job, err := p.RunJob(context.Background(), store, stream.Config{}, domain.Question{Prompt: "how does retrieval fuse channels?"}, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	rec := waitForStatus(t, store, job.ID, domain.JobCompleted)
	require.NotNil(t, rec.Result)
	assert.Contains(t, rec.Result.AnswerText, "fuses four channels")
	assert.NotEmpty(t, rec.PartialText)
}

func TestRunJobFailsWhenAnswerErrors(t *testing.T) {
	p := newTestPipeline(fakeRetriever{err: errors.New("retrieval backend unavailable")}, fakeDistiller{}, fakeSynthesizer{})

	store := jobstore.NewMemoryStore()
	job, err := p.RunJob(context.Background(), store, stream.Config{}, domain.Question{Prompt: "which file defines internal/retriever/retriever.go?"}, time.Minute)
	require.NoError(t, err)

	rec := waitForStatus(t, store, job.ID, domain.JobFailed)
	assert.NotEmpty(t, rec.Error)
}
