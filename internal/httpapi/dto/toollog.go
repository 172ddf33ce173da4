package dto

import (
	"time"

	"basegraph.app/helixask/internal/toollog"
)

// ToolLogIngestRequest is the body accepted by POST /tools/logs/ingest.
type ToolLogIngestRequest struct {
	Level   string         `json:"level"`
	Source  string         `json:"source"`
	Message string         `json:"message" binding:"required"`
	Fields  map[string]any `json:"fields,omitempty"`
}

func (r ToolLogIngestRequest) ToEntry(now time.Time) toollog.Entry {
	level := r.Level
	if level == "" {
		level = "info"
	}
	return toollog.Entry{
		Time:    now,
		Level:   level,
		Source:  r.Source,
		Message: r.Message,
		Fields:  r.Fields,
	}
}
