package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/helixask/internal/httpapi/dto"
	"basegraph.app/helixask/internal/toollog"
)

// ToolsHandler exposes the rolling tool-call log buffer the console UI
// polls and streams from.
type ToolsHandler struct {
	Buffer  *toollog.Buffer
	Limiter *toollog.TenantLimiter
}

func NewToolsHandler(buffer *toollog.Buffer, limiter *toollog.TenantLimiter) *ToolsHandler {
	return &ToolsHandler{Buffer: buffer, Limiter: limiter}
}

func (h *ToolsHandler) Logs(c *gin.Context) {
	limit := 200
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.Buffer.Recent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "execution_tool_error", "failed to load tool logs")
		return
	}

	writeJSON(c, http.StatusOK, gin.H{"entries": entries})
}

// LogsStream relays newly ingested entries as SSE events, draining a
// per-connection subscriber channel and framing each entry with sseWrite.
func (h *ToolsHandler) LogsStream(c *gin.Context) {
	ctx := c.Request.Context()
	setSSEHeaders(c.Writer)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		writeError(c, http.StatusInternalServerError, "execution_tool_error", "streaming not supported")
		return
	}

	ch, cancel := h.Buffer.Subscribe()
	defer cancel()

	sseWrite(c.Writer, "ping", "ready")
	flusher.Flush()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			sseWrite(c.Writer, "log", e)
			flusher.Flush()
		case <-keepAlive.C:
			sseWrite(c.Writer, "ping", time.Now().UTC().Format(time.RFC3339Nano))
			flusher.Flush()
		}
	}
}

func (h *ToolsHandler) Ingest(c *gin.Context) {
	tenant := c.GetHeader("X-Tenant-Id")
	if h.Limiter != nil && !h.Limiter.Allow(tenant) {
		writeError(c, http.StatusTooManyRequests, "execution_rate_limited", "tool log ingest rate limit exceeded")
		return
	}

	var req dto.ToolLogIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "execution_invalid_args", err.Error())
		return
	}

	entry := req.ToEntry(time.Now())
	if err := h.Buffer.Ingest(c.Request.Context(), entry); err != nil {
		writeError(c, http.StatusInternalServerError, "execution_tool_error", "failed to ingest log entry")
		return
	}

	writeJSON(c, http.StatusAccepted, gin.H{"status": "ingested"})
}
