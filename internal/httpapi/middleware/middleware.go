// Package middleware holds the gin middleware the HTTP transport installs
// ahead of every route: panic recovery, request logging, and the admin API
// key gate for operator-only endpoints.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Recovery converts a panic inside a handler into a 500 JSON body instead
// of letting gin's default recovery write a plaintext stack trace.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(c.Request.Context(), "panic recovered", "error", rec, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "internal_error",
					"message": "something went wrong handling this request",
					"status":  http.StatusInternalServerError,
				})
			}
		}()
		c.Next()
	}
}

// Logger records one structured line per request once it completes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		slog.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"trace_id", c.GetHeader("X-Trace-Id"),
		)
	}
}

// AdminAuth rejects requests that don't carry the configured admin API key
// in the X-Admin-Key header. A blank key disables the check, which is only
// acceptable in local development.
func AdminAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-Admin-Key") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "missing or invalid admin API key",
				"status":  http.StatusUnauthorized,
			})
			return
		}
		c.Next()
	}
}
