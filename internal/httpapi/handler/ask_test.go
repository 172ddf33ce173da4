package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/internal/ask"
	"basegraph.app/helixask/internal/citation"
	"basegraph.app/helixask/internal/concepts"
	"basegraph.app/helixask/internal/distiller"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/gates"
	"basegraph.app/helixask/internal/httpapi/handler"
	"basegraph.app/helixask/internal/intent"
	"basegraph.app/helixask/internal/jobstore"
	"basegraph.app/helixask/internal/overflow"
	"basegraph.app/helixask/internal/retriever"
	"basegraph.app/helixask/internal/stream"
	"basegraph.app/helixask/internal/synthesizer"
	"basegraph.app/helixask/internal/topic"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRetriever struct{}

func (stubRetriever) Retrieve(_ context.Context, _ retriever.Input) (domain.EvidencePack, error) {
	return domain.EvidencePack{Files: []string{"internal/ask/pipeline.go"}, TopScore: 0.9}, nil
}

type stubDistiller struct{}

func (stubDistiller) Distill(_ context.Context, _ distiller.Input) (domain.DistilledEvidence, overflow.Debug, error) {
	return domain.DistilledEvidence{Raw: "the pipeline stages evidence before synthesis"}, overflow.Debug{}, nil
}

type stubSynthesizer struct{}

func (stubSynthesizer) Synthesize(_ context.Context, _ synthesizer.Input) (string, overflow.Debug, error) {
	return "the answer", overflow.Debug{}, nil
}

type stubCitation struct{}

func (stubCitation) Repair(_ context.Context, in citation.Input) (string, overflow.Debug, error) {
	return in.Answer, overflow.Debug{}, nil
}

func newTestAskPipeline() *ask.Pipeline {
	profiles := []domain.IntentProfile{
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
	return &ask.Pipeline{
		Config: config.Config{
			Gates:   config.GatesConfig{EvidenceMinRatio: 0, EvidenceMinTokens: 0, AmbiguityShortTokens: 0},
			Arbiter: config.ArbiterConfig{RepoThreshold: 0.62, HybridThreshold: 0.35},
		},
		Intent:        intent.NewDirectory(profiles),
		Tagger:        topic.NewTagger(),
		TopicProfiles: topic.NewProfiler(map[topic.Tag]domain.TopicProfile{}),
		Concepts:      &concepts.Store{},
		Retriever:     stubRetriever{},
		Distiller:     stubDistiller{},
		Synthesizer:   stubSynthesizer{},
		Citation:      stubCitation{},
		Arbiter:       gates.NewArbiter(config.ArbiterConfig{RepoThreshold: 0.62, HybridThreshold: 0.35}),
	}
}

type fakeJobStore struct {
	jobs map[string]domain.JobRecord
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: map[string]domain.JobRecord{}}
}

func (f *fakeJobStore) Create(_ context.Context, sessionID, traceID, question string, ttl time.Duration) (domain.JobRecord, error) {
	rec := domain.JobRecord{
		ID:        "job-1",
		Status:    domain.JobQueued,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
		SessionID: sessionID,
		TraceID:   traceID,
	}
	f.jobs[rec.ID] = rec
	return rec, nil
}

func (f *fakeJobStore) MarkRunning(_ context.Context, id string) (bool, error) {
	rec, ok := f.jobs[id]
	if !ok {
		return false, jobstore.ErrNotFound
	}
	rec.Status = domain.JobRunning
	f.jobs[id] = rec
	return true, nil
}

func (f *fakeJobStore) AppendPartial(_ context.Context, id, chunk string) error {
	rec, ok := f.jobs[id]
	if !ok {
		return jobstore.ErrNotFound
	}
	rec.PartialText += chunk
	f.jobs[id] = rec
	return nil
}

func (f *fakeJobStore) Complete(_ context.Context, id string, result domain.AnswerEnvelope) error {
	rec, ok := f.jobs[id]
	if !ok {
		return jobstore.ErrNotFound
	}
	rec.Status = domain.JobCompleted
	rec.Result = &result
	f.jobs[id] = rec
	return nil
}

func (f *fakeJobStore) Fail(_ context.Context, id string, errMsg string) error {
	rec, ok := f.jobs[id]
	if !ok {
		return jobstore.ErrNotFound
	}
	rec.Status = domain.JobFailed
	rec.Error = errMsg
	f.jobs[id] = rec
	return nil
}

func (f *fakeJobStore) Get(_ context.Context, id string) (domain.JobRecord, error) {
	rec, ok := f.jobs[id]
	if !ok {
		return domain.JobRecord{}, jobstore.ErrNotFound
	}
	return rec, nil
}

func (f *fakeJobStore) Prune(_ context.Context) (int, error) { return 0, nil }
func (f *fakeJobStore) Close() error                         { return nil }

func performRequest(h gin.HandlerFunc, method, path string, body any) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h(c)
	return w
}

func TestAskReturnsSynthesizedAnswer(t *testing.T) {
	h := handler.NewAskHandler(newTestAskPipeline(), newFakeJobStore(), stream.Config{}, time.Minute)

	w := performRequest(h.Ask, http.MethodPost, "/ask", map[string]any{"prompt": "why does retrieval rank evidence this way?"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "the answer")
}

func TestAskRejectsInvalidJSON(t *testing.T) {
	h := handler.NewAskHandler(newTestAskPipeline(), newFakeJobStore(), stream.Config{}, time.Minute)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Ask(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateJobReturnsJobID(t *testing.T) {
	store := newFakeJobStore()
	h := handler.NewAskHandler(newTestAskPipeline(), store, stream.Config{}, time.Minute)

	w := performRequest(h.CreateJob, http.MethodPost, "/ask/jobs", map[string]any{"prompt": "where is the retriever wired in?"})

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "job-1")
}

func TestGetJobReturnsNotFoundForUnknownID(t *testing.T) {
	h := handler.NewAskHandler(newTestAskPipeline(), newFakeJobStore(), stream.Config{}, time.Minute)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/ask/jobs/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "jobId", Value: "missing"}}

	h.GetJob(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetJobReturnsCompletedJob(t *testing.T) {
	store := newFakeJobStore()
	rec, err := store.Create(context.Background(), "session-1", "trace-1", "why?", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Complete(context.Background(), rec.ID, domain.AnswerEnvelope{AnswerText: "done", Format: domain.FormatBrief}))

	h := handler.NewAskHandler(newTestAskPipeline(), store, stream.Config{}, time.Minute)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/ask/jobs/"+rec.ID, nil)
	c.Request = req
	c.Params = gin.Params{{Key: "jobId", Value: rec.ID}}

	h.GetJob(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "completed")
}
