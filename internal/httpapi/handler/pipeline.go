package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/helixask/internal/httpapi/dto"
	"basegraph.app/helixask/internal/orchestrator"
)

// PipelineHandler answers introspection queries about the orchestrator's
// running state: a liveness/version summary and, given a traceId, the
// cached plan that would run if /execute were called for it.
type PipelineHandler struct {
	Cache     *orchestrator.PlanCache
	StartedAt time.Time
	Version   string
}

func NewPipelineHandler(cache *orchestrator.PlanCache, version string) *PipelineHandler {
	return &PipelineHandler{Cache: cache, StartedAt: time.Now(), Version: version}
}

func (h *PipelineHandler) Status(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"status":     "ok",
		"version":    h.Version,
		"uptime_s":   int(time.Since(h.StartedAt).Seconds()),
	})
}

// LastPlanDebug returns the cached plan for a traceId so a caller can
// inspect what /plan built before deciding to /execute it.
func (h *PipelineHandler) LastPlanDebug(c *gin.Context) {
	traceID := c.Query("traceId")
	if traceID == "" {
		writeError(c, http.StatusBadRequest, "execution_invalid_args", "traceId query parameter is required")
		return
	}

	plan, ok := h.Cache.Get(c.Request.Context(), traceID)
	if !ok {
		writeError(c, http.StatusNotFound, "execution_invalid_args", "no cached plan for traceId")
		return
	}

	writeJSON(c, http.StatusOK, dto.ToPlanResponse(traceID, plan, nil, ""))
}
