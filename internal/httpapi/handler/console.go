package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/helixask/internal/toollog"
)

// ConsoleHandler answers POST /console/telemetry, a fire-and-forget beacon
// the operator console posts UI events to. It folds into the same
// tool-call log buffer /tools/logs reads from rather than standing up a
// second ingestion path for what is, at this layer, just another log line.
type ConsoleHandler struct {
	Buffer *toollog.Buffer
}

func NewConsoleHandler(buffer *toollog.Buffer) *ConsoleHandler {
	return &ConsoleHandler{Buffer: buffer}
}

type consoleTelemetryRequest struct {
	Event  string         `json:"event" binding:"required"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (h *ConsoleHandler) Telemetry(c *gin.Context) {
	var req consoleTelemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "execution_invalid_args", err.Error())
		return
	}

	_ = h.Buffer.Ingest(c.Request.Context(), toollog.Entry{
		Time:    time.Now(),
		Level:   "info",
		Source:  "console",
		Message: req.Event,
		Fields:  req.Fields,
	})

	writeJSON(c, http.StatusAccepted, gin.H{"status": "recorded"})
}
