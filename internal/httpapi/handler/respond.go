// Package handler holds the gin handlers for every endpoint the ask
// service exposes: synchronous and job-queued asks, the plan/execute
// orchestrator surface, pipeline introspection, tool logs, and the small
// opaque proxies the console UI calls through.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/helixask/internal/httpapi/dto"
)

// writeJSON marshals body itself rather than calling c.JSON, so a handler
// that already streamed keep-alive bytes ahead of the real payload (see
// AskHandler.Ask) doesn't trigger a second, conflicting header write.
func writeJSON(c *gin.Context, status int, body any) {
	if !c.Writer.Written() {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Writer.WriteHeader(status)
	}
	b, err := json.Marshal(body)
	if err != nil {
		c.Writer.Write([]byte(`{"error":"internal_error","message":"failed to encode response","status":500}`))
		return
	}
	c.Writer.Write(b)
}

func writeError(c *gin.Context, status int, code, message string) {
	writeJSON(c, status, dto.ErrorResponse{Error: code, Message: message, Status: status})
}

func httpStatusForErrorCode(code string) int {
	switch code {
	case "execution_invalid_args", "knowledge_context_invalid":
		return http.StatusBadRequest
	case "execution_auth":
		return http.StatusUnauthorized
	case "execution_rate_limited":
		return http.StatusTooManyRequests
	case "execution_timeout":
		return http.StatusGatewayTimeout
	case "alpha_governor_engaged":
		return http.StatusConflict
	case "final_output_schema_mismatch", "execution_tool_contract_mismatch":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
