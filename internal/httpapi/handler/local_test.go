package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/httpapi/handler"
)

type fakeProxyTarget struct {
	status      int
	contentType string
	body        string
	err         error
}

func (f fakeProxyTarget) Forward(_ context.Context, _ string, _ io.Reader) (int, string, io.ReadCloser, error) {
	if f.err != nil {
		return 0, "", nil, f.err
	}
	return f.status, f.contentType, io.NopCloser(strings.NewReader(f.body)), nil
}

func TestCallSpecProxyReturnsNotConfiguredWhenTargetNil(t *testing.T) {
	h := handler.NewLocalSkillsHandler(nil, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/local-call-spec", strings.NewReader(""))

	h.CallSpecProxy(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTTSProxyForwardsUpstreamResponse(t *testing.T) {
	h := handler.NewLocalSkillsHandler(nil, fakeProxyTarget{status: http.StatusOK, contentType: "audio/wav", body: "audio-bytes"}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/tts/local", strings.NewReader("speak this"))

	h.TTSProxy(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
	assert.Equal(t, "audio-bytes", w.Body.String())
}

func TestSTTProxyReturnsBadGatewayOnForwardError(t *testing.T) {
	h := handler.NewLocalSkillsHandler(nil, nil, fakeProxyTarget{err: assert.AnError})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/stt/local", strings.NewReader(""))

	h.STTProxy(c)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
