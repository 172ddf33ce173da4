package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TelemetrySource fetches a rendered snapshot from an external metric and
// telemetry snapshot store maintained out of process, referenced here
// through a narrow capability interface.
type TelemetrySource interface {
	Badges(ctx context.Context) (json.RawMessage, error)
	Panels(ctx context.Context) (json.RawMessage, error)
}

type httpTelemetrySource struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPTelemetrySource(baseURL string, timeout time.Duration) TelemetrySource {
	if baseURL == "" {
		return nil
	}
	return &httpTelemetrySource{baseURL: baseURL, timeout: timeout, client: &http.Client{}}
}

func (s *httpTelemetrySource) Badges(ctx context.Context) (json.RawMessage, error) {
	return s.fetch(ctx, s.baseURL+"/badges")
}

func (s *httpTelemetrySource) Panels(ctx context.Context) (json.RawMessage, error) {
	return s.fetch(ctx, s.baseURL+"/panels")
}

func (s *httpTelemetrySource) fetch(ctx context.Context, url string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// TelemetryHandler answers GET /telemetry/badges and GET /telemetry/panels.
type TelemetryHandler struct {
	Source TelemetrySource
}

func NewTelemetryHandler(source TelemetrySource) *TelemetryHandler {
	return &TelemetryHandler{Source: source}
}

func (h *TelemetryHandler) Badges(c *gin.Context) {
	h.serve(c, func(ctx context.Context) (json.RawMessage, error) { return h.Source.Badges(ctx) })
}

func (h *TelemetryHandler) Panels(c *gin.Context) {
	h.serve(c, func(ctx context.Context) (json.RawMessage, error) { return h.Source.Panels(ctx) })
}

func (h *TelemetryHandler) serve(c *gin.Context, fetch func(context.Context) (json.RawMessage, error)) {
	if h.Source == nil {
		writeJSON(c, http.StatusServiceUnavailable, gin.H{"error": "not_configured"})
		return
	}

	raw, err := fetch(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusBadGateway, "execution_tool_error", "telemetry snapshot store unavailable")
		return
	}

	writeJSON(c, http.StatusOK, raw)
}
