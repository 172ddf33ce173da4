package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/httpapi/handler"
	"basegraph.app/helixask/internal/httpapi/router"
	"basegraph.app/helixask/internal/intent"
	"basegraph.app/helixask/internal/orchestrator"
	"basegraph.app/helixask/internal/stream"
	"basegraph.app/helixask/internal/toollog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, adminKey string) *gin.Engine {
	t.Helper()

	cache := orchestrator.NewPlanCache(time.Minute, 10, nil)
	manifest := orchestrator.NewManifest()
	dir := intent.NewDirectory(nil)

	deps := router.Dependencies{
		Ask:         handler.NewAskHandler(nil, nil, stream.Config{}, time.Minute),
		Plan:        handler.NewPlanHandler(dir, cache, orchestrator.New(manifest), manifest),
		Pipeline:    handler.NewPipelineHandler(cache, "test"),
		Tools:       handler.NewToolsHandler(toollog.NewBuffer(10), nil),
		Console:     handler.NewConsoleHandler(toollog.NewBuffer(10)),
		Telemetry:   handler.NewTelemetryHandler(nil),
		LocalSkills: handler.NewLocalSkillsHandler(nil, nil, nil),
		Mood:        handler.NewMoodHandler(nil),
	}

	r := gin.New()
	router.SetupRoutes(r, deps, router.Config{AdminAPIKey: adminKey})
	return r
}

func TestHealthRouteIsRegistered(t *testing.T) {
	r := newTestRouter(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestAdminGatedRouteRejectsMissingKey(t *testing.T) {
	r := newTestRouter(t, "secret-key")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tools/logs/ingest", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminGatedRouteAllowsMatchingKey(t *testing.T) {
	r := newTestRouter(t, "secret-key")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tools/logs/ingest", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Key", "secret-key")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestPublicRoutesDoNotRequireAdminKey(t *testing.T) {
	r := newTestRouter(t, "secret-key")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tools/logs", nil)
	r.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestMoodHintRouteReachesHandlerWithoutAdminKey(t *testing.T) {
	r := newTestRouter(t, "secret-key")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mood-hint", strings.NewReader(`{"text":""}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "none")
}
