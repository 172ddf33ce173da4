package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/helixask/common/arangodb"
	"basegraph.app/helixask/common/id"
	"basegraph.app/helixask/common/llm"
	"basegraph.app/helixask/common/logger"
	"basegraph.app/helixask/common/otel"
	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/core/db"
	"basegraph.app/helixask/internal/ask"
	"basegraph.app/helixask/internal/citation"
	"basegraph.app/helixask/internal/concepts"
	"basegraph.app/helixask/internal/distiller"
	"basegraph.app/helixask/internal/gates"
	"basegraph.app/helixask/internal/httpapi/handler"
	"basegraph.app/helixask/internal/httpapi/middleware"
	httprouter "basegraph.app/helixask/internal/httpapi/router"
	"basegraph.app/helixask/internal/intent"
	"basegraph.app/helixask/internal/jobstore"
	"basegraph.app/helixask/internal/lattice"
	"basegraph.app/helixask/internal/longprompt"
	"basegraph.app/helixask/internal/orchestrator"
	"basegraph.app/helixask/internal/overflow"
	"basegraph.app/helixask/internal/queue"
	"basegraph.app/helixask/internal/retriever"
	"basegraph.app/helixask/internal/seed"
	"basegraph.app/helixask/internal/store"
	"basegraph.app/helixask/internal/stream"
	"basegraph.app/helixask/internal/synthesizer"
	"basegraph.app/helixask/internal/toollog"
	"basegraph.app/helixask/internal/topic"
	"basegraph.app/helixask/internal/trajectory"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg := config.Load()

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "helix ask starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "job_stream", cfg.Redis.JobStream)

	jobs, err := jobstore.New(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize job store", "error", err)
		os.Exit(1)
	}
	defer jobs.Close()

	governor, err := trajectory.NewGovernor(cfg.Redis.URL, cfg.AlphaGovernor.Alpha, cfg.AlphaGovernor.WindowSize, cfg.AlphaGovernor.MinSamples)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize alpha governor", "error", err)
		os.Exit(1)
	}

	traceStore := store.New(database)

	eventsProducer := queue.NewRedisProducer(redisClient, cfg.Redis.JobStream)
	dlqProducer := queue.NewRedisProducer(redisClient, cfg.Redis.DLQStream)
	eventPublisher := orchestrator.NewRedisEventPublisher(eventsProducer, dlqProducer)

	var arangoClient arangodb.Client
	if cfg.ArangoDB.Enabled() {
		arangoClient, err = arangodb.New(ctx, arangodb.Config{
			URL:      cfg.ArangoDB.URL,
			Username: cfg.ArangoDB.Username,
			Password: cfg.ArangoDB.Password,
			Database: cfg.ArangoDB.Database,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create arangodb client", "error", err)
			os.Exit(1)
		}
		if err := arangoClient.EnsureDatabase(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to ensure arangodb database", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "arangodb connected", "database", cfg.ArangoDB.Database)
	} else {
		slog.InfoContext(ctx, "arangodb disabled; code lattice served from local snapshot")
	}

	var latticeReader lattice.Reader
	if arangoClient != nil {
		latticeReader = lattice.NewArangoReader(arangoClient)
	} else {
		latticeReader = lattice.NewSnapshot(nil)
	}

	conceptStore := concepts.NewStore(seed.ConceptCards())
	intentDir := intent.NewDirectory(seed.IntentProfiles())
	tagger := topic.NewTagger()
	topicProfiler := topic.NewProfiler(seed.TopicProfiles())
	arbiter := gates.NewArbiter(cfg.Arbiter)

	if !cfg.LLM.Enabled() {
		slog.ErrorContext(ctx, "HELIX_ASK_LLM_API_KEY is required")
		os.Exit(1)
	}

	llmClient, err := llm.New(llm.Config{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL, Model: cfg.LLM.Model})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "llm client initialized", "model", cfg.LLM.Model)

	overflowRunner := overflow.New(llmClient, overflow.Config{
		MaxRetries:            cfg.Overflow.MaxRetries,
		ContextCapacityTokens: cfg.Overflow.ContextCapacityTokens,
	})

	retrieverCfg := retriever.Config{
		RRFK:           cfg.Retrieval.RRFK,
		WeightLexical:  cfg.Retrieval.RRFWeightLexical,
		WeightSymbol:   cfg.Retrieval.RRFWeightSymbol,
		WeightFuzzy:    cfg.Retrieval.RRFWeightFuzzy,
		WeightPath:     cfg.Retrieval.RRFWeightPath,
		FuzzyThreshold: cfg.Retrieval.FuzzyThreshold,
		MMRLambda:      cfg.Retrieval.MMRLambda,
		TopK:           cfg.Retrieval.ContextFiles,
	}.WithDefaults()

	pipeline := &ask.Pipeline{
		Config:        cfg,
		Intent:        intentDir,
		Tagger:        tagger,
		TopicProfiles: topicProfiler,
		Concepts:      conceptStore,
		Retriever:     retriever.New(retrieverCfg, latticeReader, conceptStore, slog.Default()),
		LongPrompt: longprompt.New(longprompt.Config{
			ChunkChars:      cfg.LongPrompt.ChunkChars,
			ChunkOverlap:    cfg.LongPrompt.ChunkOverlap,
			IngestThreshold: cfg.LongPrompt.IngestThreshold,
		}),
		Distiller:    distiller.New(overflowRunner),
		Synthesizer:  synthesizer.New(overflowRunner),
		Citation:     citation.New(overflowRunner),
		Arbiter:      arbiter,
		Governor:     governor,
		Trajectories: traceStore,
		Logger:       slog.Default(),
	}

	manifest := orchestrator.NewManifest(
		orchestrator.NewWarpAskTool(pipeline),
		orchestrator.NewWarpViabilityTool(),
		orchestrator.NewGRGroundingTool(),
	)
	orch := orchestrator.New(manifest)
	orch.Events = eventPublisher

	planCache := orchestrator.NewPlanCache(5*time.Minute, 10000, traceStore)

	buffer := toollog.NewBuffer(cfg.ToolLog.BufferCapacity)
	limiter := toollog.NewTenantLimiter(cfg.ToolLog.IngestRatePerS, cfg.ToolLog.IngestBurst)

	moodClient, err := llm.New(llm.Config{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL, Model: cfg.LLM.Model})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create mood-hint llm client", "error", err)
		os.Exit(1)
	}

	proxyTimeout := time.Duration(cfg.LocalSkills.ProxyTimeoutMS) * time.Millisecond
	deps := httprouter.Dependencies{
		Ask:      handler.NewAskHandler(pipeline, jobs, streamConfig(cfg), jobTTL(cfg)),
		Plan:     handler.NewPlanHandler(intentDir, planCache, orch, manifest),
		Pipeline: handler.NewPipelineHandler(planCache, cfg.OTel.ServiceVersion),
		Tools:    handler.NewToolsHandler(buffer, limiter),
		Console:  handler.NewConsoleHandler(buffer),
		Telemetry: handler.NewTelemetryHandler(handler.NewHTTPTelemetrySource(
			cfg.Telemetry.SnapshotURL, time.Duration(cfg.Telemetry.TimeoutMS)*time.Millisecond)),
		LocalSkills: handler.NewLocalSkillsHandler(
			handler.NewHTTPProxyTarget(cfg.LocalSkills.CallSpecURL, proxyTimeout),
			handler.NewHTTPProxyTarget(cfg.LocalSkills.TTSURL, proxyTimeout),
			handler.NewHTTPProxyTarget(cfg.LocalSkills.STTURL, proxyTimeout),
		),
		Mood: handler.NewMoodHandler(moodClient),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, deps)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if arangoClient != nil {
		if err := arangoClient.Close(); err != nil {
			slog.ErrorContext(shutdownCtx, "arangodb close error", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, deps httprouter.Dependencies) *gin.Engine {
	router := gin.New()

	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, deps, httprouter.Config{AdminAPIKey: cfg.AdminAPIKey})

	return router
}

func streamConfig(cfg config.Config) stream.Config {
	return stream.Config{
		ChunkMaxChars: cfg.Stream.ChunkMaxChars,
		FlushMS:       cfg.Stream.FlushMS,
		MaxEvents:     cfg.Stream.MaxEvents,
	}
}

func jobTTL(cfg config.Config) time.Duration {
	return time.Duration(cfg.Job.Timeout) * time.Millisecond
}

const banner = `
██╗  ██╗███████╗██╗     ██╗██╗  ██╗     █████╗ ███████╗██╗  ██╗
██║  ██║██╔════╝██║     ██║╚██╗██╔╝    ██╔══██╗██╔════╝██║ ██╔╝
███████║█████╗  ██║     ██║ ╚███╔╝     ███████║███████╗█████╔╝
██╔══██║██╔══╝  ██║     ██║ ██╔██╗     ██╔══██║╚════██║██╔═██╗
██║  ██║███████╗███████╗██║██╔╝ ██╗    ██║  ██║███████║██║  ██╗
╚═╝  ╚═╝╚══════╝╚══════╝╚═╝╚═╝  ╚═╝    ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
`
