package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ProxyTarget forwards an opaque request body to an upstream local skill
// endpoint and streams its response back untouched. /local-call-spec,
// /tts/local, /stt/local are narrow capability interfaces over whatever
// vision/TTS/STT backend is actually running, out of process and out of
// scope for this package.
type ProxyTarget interface {
	Forward(ctx context.Context, contentType string, body io.Reader) (statusCode int, respContentType string, resp io.ReadCloser, err error)
}

// httpProxyTarget forwards to a configured upstream URL over plain HTTP,
// bounded by a fixed per-call timeout.
type httpProxyTarget struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPProxyTarget(url string, timeout time.Duration) ProxyTarget {
	if url == "" {
		return nil
	}
	return &httpProxyTarget{url: url, timeout: timeout, client: &http.Client{}}
}

func (t *httpProxyTarget) Forward(ctx context.Context, contentType string, body io.Reader) (int, string, io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, body)
	if err != nil {
		cancel()
		return 0, "", nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		cancel()
		return 0, "", nil, err
	}

	return resp.StatusCode, resp.Header.Get("Content-Type"), &cancelingReadCloser{ReadCloser: resp.Body, cancel: cancel}, nil
}

type cancelingReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelingReadCloser) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

// LocalSkillsHandler answers the three opaque proxy routes, each bound to
// its own configured (or absent) upstream.
type LocalSkillsHandler struct {
	CallSpec ProxyTarget
	TTS      ProxyTarget
	STT      ProxyTarget
}

func NewLocalSkillsHandler(callSpec, tts, stt ProxyTarget) *LocalSkillsHandler {
	return &LocalSkillsHandler{CallSpec: callSpec, TTS: tts, STT: stt}
}

func (h *LocalSkillsHandler) CallSpecProxy(c *gin.Context) {
	proxy(c, h.CallSpec)
}

func (h *LocalSkillsHandler) TTSProxy(c *gin.Context) {
	proxy(c, h.TTS)
}

func (h *LocalSkillsHandler) STTProxy(c *gin.Context) {
	proxy(c, h.STT)
}

func proxy(c *gin.Context, target ProxyTarget) {
	if target == nil {
		writeJSON(c, http.StatusServiceUnavailable, gin.H{"error": "not_configured"})
		return
	}

	status, contentType, resp, err := target.Forward(c.Request.Context(), c.ContentType(), c.Request.Body)
	if err != nil {
		writeError(c, http.StatusBadGateway, "execution_tool_error", "upstream local skill call failed")
		return
	}
	defer resp.Close()

	if contentType != "" {
		c.Writer.Header().Set("Content-Type", contentType)
	}
	c.Writer.WriteHeader(status)
	_, _ = io.Copy(c.Writer, resp)
}
