package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/httpapi/handler"
	"basegraph.app/helixask/internal/toollog"
)

func TestToolsIngestThenLogsReturnsEntry(t *testing.T) {
	buffer := toollog.NewBuffer(10)
	h := handler.NewToolsHandler(buffer, nil)

	w := performRequest(h.Ingest, http.MethodPost, "/tools/logs/ingest", map[string]any{"message": "warp-ask tool invoked", "source": "orchestrator"})
	require.Equal(t, http.StatusAccepted, w.Code)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/tools/logs", nil)

	h.Logs(c2)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), "warp-ask tool invoked")
}

func TestToolsIngestRejectsMissingMessage(t *testing.T) {
	buffer := toollog.NewBuffer(10)
	h := handler.NewToolsHandler(buffer, nil)

	w := performRequest(h.Ingest, http.MethodPost, "/tools/logs/ingest", map[string]any{"source": "orchestrator"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToolsIngestDeniedWhenRateLimited(t *testing.T) {
	buffer := toollog.NewBuffer(10)
	limiter := toollog.NewTenantLimiter(0, 1)
	h := handler.NewToolsHandler(buffer, limiter)

	w1 := performRequest(h.Ingest, http.MethodPost, "/tools/logs/ingest", map[string]any{"message": "x"})
	require.Equal(t, http.StatusAccepted, w1.Code)

	w2 := performRequest(h.Ingest, http.MethodPost, "/tools/logs/ingest", map[string]any{"message": "x"})
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
}

func TestToolsLogsHonorsLimitQueryParam(t *testing.T) {
	buffer := toollog.NewBuffer(10)
	for i := 0; i < 5; i++ {
		require.NoError(t, buffer.Ingest(context.Background(), toollog.Entry{Message: "entry"}))
	}
	h := handler.NewToolsHandler(buffer, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/tools/logs?limit=2", nil)

	h.Logs(c)
	require.Equal(t, http.StatusOK, w.Code)
}
