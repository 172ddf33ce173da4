package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/httpapi/handler"
	"basegraph.app/helixask/internal/orchestrator"
)

func TestPipelineStatusReportsVersionAndUptime(t *testing.T) {
	h := handler.NewPipelineHandler(orchestrator.NewPlanCache(time.Minute, 10, nil), "v1.2.3")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/pipeline/status", nil)

	h.Status(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "v1.2.3")
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestLastPlanDebugRequiresTraceID(t *testing.T) {
	h := handler.NewPipelineHandler(orchestrator.NewPlanCache(time.Minute, 10, nil), "v1")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/pipeline/last-plan", nil)

	h.LastPlanDebug(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLastPlanDebugReturnsNotFoundForUncachedTrace(t *testing.T) {
	h := handler.NewPipelineHandler(orchestrator.NewPlanCache(time.Minute, 10, nil), "v1")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/pipeline/last-plan?traceId=unknown", nil)

	h.LastPlanDebug(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLastPlanDebugReturnsCachedPlan(t *testing.T) {
	cache := orchestrator.NewPlanCache(time.Minute, 10, nil)
	cache.Put("trace-9", orchestrator.Plan{Goal: "why does the arbiter narrow the tier?"})
	h := handler.NewPipelineHandler(cache, "v1")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/pipeline/last-plan?traceId=trace-9", nil)

	h.LastPlanDebug(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "arbiter")
}
