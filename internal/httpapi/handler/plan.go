package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/httpapi/dto"
	"basegraph.app/helixask/internal/intent"
	"basegraph.app/helixask/internal/orchestrator"
)

type PlanHandler struct {
	Intent       *intent.Directory
	Cache        *orchestrator.PlanCache
	Orchestrator *orchestrator.Orchestrator
	Manifest     orchestrator.Manifest
}

func NewPlanHandler(dir *intent.Directory, cache *orchestrator.PlanCache, orch *orchestrator.Orchestrator, manifest orchestrator.Manifest) *PlanHandler {
	return &PlanHandler{Intent: dir, Cache: cache, Orchestrator: orch, Manifest: manifest}
}

// Plan compiles a goal into an executor plan, caches it under a fresh
// traceId, and returns the plan's dsl/steps/tool manifest for inspection
// before the caller decides whether to run /execute.
func (h *PlanHandler) Plan(c *gin.Context) {
	var req dto.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "execution_invalid_args", err.Error())
		return
	}

	goal := req.Text()
	if goal == "" {
		writeError(c, http.StatusBadRequest, "execution_invalid_args", "prompt or goal is required")
		return
	}

	traceID := req.TraceID
	if traceID == "" {
		traceID = uuid.NewString()
	}

	q := domain.Question{Prompt: goal, Context: req.Context, SessionID: req.SessionID, TraceID: traceID, ReceivedAt: time.Now()}
	profile, _ := h.Intent.Match(q, intent.Expectation{
		HasRepoHints:     q.HasRepoHints(),
		HasFilePathHints: q.HasFilePathHints(),
	})

	plan := orchestrator.Build(goal, domain.PlanDirectives{})
	h.Cache.Put(traceID, plan)

	writeJSON(c, http.StatusOK, dto.ToPlanResponse(traceID, plan, h.Manifest, string(profile.Strategy)))
}

// Execute runs a previously built plan by traceId and reports each step's
// outcome plus the grounded citations and rationale the final warp-ask
// step's answer carries.
func (h *PlanHandler) Execute(c *gin.Context) {
	var req dto.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "execution_invalid_args", err.Error())
		return
	}
	if req.TraceID == "" {
		writeError(c, http.StatusBadRequest, "execution_invalid_args", "traceId is required")
		return
	}

	plan, ok := h.Cache.Get(c.Request.Context(), req.TraceID)
	if !ok {
		writeError(c, http.StatusNotFound, "execution_invalid_args", "no plan found for traceId; call /plan first")
		return
	}

	result := h.Orchestrator.Execute(c.Request.Context(), plan, nil)
	if result.Err != nil {
		slog.WarnContext(c.Request.Context(), "plan execution failed", "trace_id", req.TraceID, "error", result.Err, "error_code", result.ErrCode)
		writeJSON(c, httpStatusForErrorCode(string(result.ErrCode)), dto.ToExecuteResponse(req.TraceID, result, nil, nil))
		return
	}

	citations := citationsFromResult(result)
	whyBelongs := make([]string, 0, len(citations))
	for _, ref := range citations {
		whyBelongs = append(whyBelongs, ref+" was retrieved as evidence and cited directly in the synthesized answer")
	}

	writeJSON(c, http.StatusOK, dto.ToExecuteResponse(req.TraceID, result, citations, whyBelongs))
}

func citationsFromResult(result orchestrator.ExecutionResult) []string {
	refs, ok := result.Final.Data["evidence_refs"].([]string)
	if !ok {
		return nil
	}
	return refs
}
