// Package router wires the HTTP handlers into gin route groups.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/helixask/internal/httpapi/handler"
	"basegraph.app/helixask/internal/httpapi/middleware"
)

// Dependencies bundles every handler SetupRoutes wires in. Every field
// must be non-nil; a handler whose upstream the deployment didn't
// configure (e.g. LocalSkills when no proxy URLs are set) is built with
// nil targets and answers 503 for those routes.
type Dependencies struct {
	Ask         *handler.AskHandler
	Plan        *handler.PlanHandler
	Pipeline    *handler.PipelineHandler
	Tools       *handler.ToolsHandler
	Console     *handler.ConsoleHandler
	Telemetry   *handler.TelemetryHandler
	LocalSkills *handler.LocalSkillsHandler
	Mood        *handler.MoodHandler
}

// Config carries the deployment-level knobs SetupRoutes needs that aren't
// tied to a specific handler.
type Config struct {
	AdminAPIKey string
}

func SetupRoutes(router *gin.Engine, deps Dependencies, cfg Config) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/ask", deps.Ask.Ask)
	router.POST("/ask/jobs", deps.Ask.CreateJob)
	router.GET("/ask/jobs/:jobId", deps.Ask.GetJob)

	router.POST("/plan", deps.Plan.Plan)
	router.POST("/execute", deps.Plan.Execute)

	router.GET("/pipeline/status", deps.Pipeline.Status)
	router.GET("/pipeline/last-plan-debug", deps.Pipeline.LastPlanDebug)

	router.GET("/tools/logs", deps.Tools.Logs)
	router.GET("/tools/logs/stream", deps.Tools.LogsStream)

	admin := router.Group("/")
	admin.Use(middleware.AdminAuth(cfg.AdminAPIKey))
	admin.POST("/tools/logs/ingest", deps.Tools.Ingest)

	router.POST("/console/telemetry", deps.Console.Telemetry)
	router.GET("/telemetry/badges", deps.Telemetry.Badges)
	router.GET("/telemetry/panels", deps.Telemetry.Panels)

	router.POST("/local-call-spec", deps.LocalSkills.CallSpecProxy)
	router.POST("/tts/local", deps.LocalSkills.TTSProxy)
	router.POST("/stt/local", deps.LocalSkills.STTProxy)

	router.POST("/mood-hint", deps.Mood.Hint)
}
