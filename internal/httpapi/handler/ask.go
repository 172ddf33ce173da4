package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"basegraph.app/helixask/internal/ask"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/httpapi/dto"
	"basegraph.app/helixask/internal/jobstore"
	"basegraph.app/helixask/internal/stream"
)

// keepAliveInterval pings the connection every ~15s while processing:
// JSON parsers skip leading whitespace, so bytes written ahead of the
// real body don't corrupt it.
const keepAliveInterval = 15 * time.Second

type AskHandler struct {
	Pipeline  *ask.Pipeline
	Jobs      jobstore.Store
	StreamCfg stream.Config
	JobTTL    time.Duration
}

func NewAskHandler(pipeline *ask.Pipeline, jobs jobstore.Store, streamCfg stream.Config, jobTTL time.Duration) *AskHandler {
	return &AskHandler{Pipeline: pipeline, Jobs: jobs, StreamCfg: streamCfg, JobTTL: jobTTL}
}

// Ask runs one question synchronously, pinging the connection with
// whitespace bytes every ~15s so a slow answer doesn't trip an idle
// load-balancer timeout.
func (h *AskHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "execution_invalid_args", err.Error())
		return
	}

	traceID := uuid.NewString()
	q := req.ToQuestion(traceID, time.Now())
	ctx := c.Request.Context()

	type outcome struct {
		result ask.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := h.Pipeline.Answer(ctx, q)
		done <- outcome{result: result, err: err}
	}()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	flusher, canFlush := c.Writer.(http.Flusher)

	var out outcome
	for {
		select {
		case out = <-done:
			if out.err != nil {
				slog.ErrorContext(ctx, "ask pipeline failed", "error", out.err, "trace_id", traceID)
				writeError(c, http.StatusInternalServerError, "execution_tool_error", "failed to answer question")
				return
			}
			go h.Pipeline.EmitTrajectory(context.WithoutCancel(ctx), q, out.result, domain.OriginLive)
			writeJSON(c, http.StatusOK, dto.ToAskResponse(out.result, q.DryRun, q.Debug))
			return
		case <-ticker.C:
			c.Writer.Write([]byte(" "))
			if canFlush {
				flusher.Flush()
			}
		case <-ctx.Done():
			writeError(c, http.StatusGatewayTimeout, "execution_timeout", "client disconnected before an answer was ready")
			return
		}
	}
}

// CreateJob starts the same question as a background job and returns
// immediately with its id.
func (h *AskHandler) CreateJob(c *gin.Context) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "execution_invalid_args", err.Error())
		return
	}

	traceID := uuid.NewString()
	q := req.ToQuestion(traceID, time.Now())

	job, err := h.Pipeline.RunJob(c.Request.Context(), h.Jobs, h.StreamCfg, q, h.JobTTL)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "execution_tool_error", "failed to create job")
		return
	}

	writeJSON(c, http.StatusAccepted, dto.ToJobCreatedResponse(job))
}

// GetJob reports one job's current state, including the partial text
// accumulated so far, for callers that poll the job.
func (h *AskHandler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")
	job, err := h.Jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) || errors.Is(err, jobstore.ErrExpired) {
			writeError(c, http.StatusNotFound, "execution_invalid_args", "job not found")
			return
		}
		writeError(c, http.StatusInternalServerError, "execution_tool_error", "failed to load job")
		return
	}

	writeJSON(c, http.StatusOK, dto.ToJobResponse(job))
}
