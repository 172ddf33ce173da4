package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/httpapi/handler"
	"basegraph.app/helixask/internal/intent"
	"basegraph.app/helixask/internal/orchestrator"
)

type fakePlanAskRunner struct {
	envelope domain.AnswerEnvelope
	err      error
}

func (f fakePlanAskRunner) Ask(_ context.Context, _ string) (domain.AnswerEnvelope, error) {
	return f.envelope, f.err
}

func testIntentDirectory() *intent.Directory {
	return intent.NewDirectory([]domain.IntentProfile{
		{
			ID:       "general",
			Label:    "General",
			Domain:   domain.DomainGeneral,
			Tier:     domain.TierF1,
			Strategy: domain.StrategyHybridExplain,
			Evidence: domain.EvidencePolicy{AllowCitations: true},
		},
	})
}

func TestPlanCompilesAndCachesPlan(t *testing.T) {
	cache := orchestrator.NewPlanCache(time.Minute, 10, nil)
	manifest := orchestrator.NewManifest(orchestrator.NewWarpAskTool(fakePlanAskRunner{}))
	h := handler.NewPlanHandler(testIntentDirectory(), cache, orchestrator.New(manifest), manifest)

	w := performRequest(h.Plan, http.MethodPost, "/plan", map[string]any{"prompt": "how does retrieval fuse channels?", "traceId": "trace-plan-1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "trace-plan-1")

	_, ok := cache.Get(context.Background(), "trace-plan-1")
	assert.True(t, ok)
}

func TestPlanRejectsEmptyGoal(t *testing.T) {
	cache := orchestrator.NewPlanCache(time.Minute, 10, nil)
	h := handler.NewPlanHandler(testIntentDirectory(), cache, orchestrator.New(orchestrator.NewManifest()), orchestrator.NewManifest())

	w := performRequest(h.Plan, http.MethodPost, "/plan", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteRequiresTraceID(t *testing.T) {
	cache := orchestrator.NewPlanCache(time.Minute, 10, nil)
	h := handler.NewPlanHandler(testIntentDirectory(), cache, orchestrator.New(orchestrator.NewManifest()), orchestrator.NewManifest())

	w := performRequest(h.Execute, http.MethodPost, "/execute", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteReturnsNotFoundForUncachedPlan(t *testing.T) {
	cache := orchestrator.NewPlanCache(time.Minute, 10, nil)
	h := handler.NewPlanHandler(testIntentDirectory(), cache, orchestrator.New(orchestrator.NewManifest()), orchestrator.NewManifest())

	w := performRequest(h.Execute, http.MethodPost, "/execute", map[string]any{"traceId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExecuteRunsCachedPlanAndReturnsSummary(t *testing.T) {
	cache := orchestrator.NewPlanCache(time.Minute, 10, nil)
	manifest := orchestrator.NewManifest(orchestrator.NewWarpAskTool(fakePlanAskRunner{
		envelope: domain.AnswerEnvelope{AnswerText: "the retriever fuses lexical, symbol, and fuzzy channels", Format: domain.FormatBrief},
	}))
	cache.Put("trace-exec-1", orchestrator.Build("how does the retriever fuse channels?", domain.PlanDirectives{}))
	h := handler.NewPlanHandler(testIntentDirectory(), cache, orchestrator.New(manifest), manifest)

	w := performRequest(h.Execute, http.MethodPost, "/execute", map[string]any{"traceId": "trace-exec-1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fuzzy channels")
}
