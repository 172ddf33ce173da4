package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/httpapi/handler"
	"basegraph.app/helixask/internal/toollog"
)

func TestConsoleTelemetryRecordsEventToBuffer(t *testing.T) {
	buffer := toollog.NewBuffer(10)
	h := handler.NewConsoleHandler(buffer)

	w := performRequest(h.Telemetry, http.MethodPost, "/console/telemetry", map[string]any{"event": "panel_opened"})
	require.Equal(t, http.StatusAccepted, w.Code)

	entries, err := buffer.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "panel_opened", entries[0].Message)
	assert.Equal(t, "console", entries[0].Source)
}

func TestConsoleTelemetryRejectsMissingEvent(t *testing.T) {
	h := handler.NewConsoleHandler(toollog.NewBuffer(10))

	w := performRequest(h.Telemetry, http.MethodPost, "/console/telemetry", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
