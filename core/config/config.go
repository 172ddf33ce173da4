package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"basegraph.app/helixask/core/db"
)

// Config holds all application configuration, loaded once at process start
// from environment variables. It is treated as immutable after Load returns.
type Config struct {
	Env  string
	Port string

	DB    db.Config
	OTel  OTelConfig
	LLM   LLMConfig
	Redis RedisConfig

	Retrieval     RetrievalConfig
	Overflow      OverflowConfig
	Arbiter       ArbiterConfig
	Gates         GatesConfig
	LongPrompt    LongPromptConfig
	Job           JobConfig
	AlphaGovernor AlphaGovernorConfig
	Stream        StreamConfig
	ToolLog       ToolLogConfig
	LocalSkills   LocalSkillsConfig
	Telemetry     TelemetryConfig

	ArangoDB ArangoDBConfig

	AdminAPIKey string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// RedisConfig configures the orchestrator's plan-step event log: a Redis
// Stream every executed step is published to (JobStream is a legacy field
// name predating the rename to plan-step events), plus the consumer
// group/name a tailing consumer would register under and the DLQ stream
// failed steps are copied to. The Job Store (internal/jobstore) is a plain
// hash + pub/sub against the same URL, not a stream.
type RedisConfig struct {
	URL           string
	JobStream     string
	ConsumerGroup string
	Consumer      string
	DLQStream     string
}

type ArangoDBConfig struct {
	URL      string
	Username string
	Password string
	Database string
}

func (c ArangoDBConfig) Enabled() bool {
	return c.URL != ""
}

// RetrievalConfig tunes the hybrid retriever's channel fan-out, the
// weighted Reciprocal-Rank-Fusion, and the MMR diversification pass.
type RetrievalConfig struct {
	ContextFiles        int
	ContextChars        int
	RRFK                int
	RRFWeightLexical    float64
	RRFWeightSymbol     float64
	RRFWeightFuzzy      float64
	RRFWeightPath       float64
	FuzzyThreshold      float64
	MMRLambda           float64
	RetryMaxAttempts    int
	TypesenseURL        string
}

// OverflowConfig governs the overflow-retry wrapper invoked when an LLM
// call rejects a prompt for exceeding its context window.
type OverflowConfig struct {
	MaxRetries            int
	TrimRatio             float64
	ContextCapacityTokens int
}

// ArbiterConfig holds the repo/hybrid domain-selection thresholds compared
// against the arbiter's bounded retrieval-confidence score.
type ArbiterConfig struct {
	RepoThreshold   float64
	HybridThreshold float64
}

// GatesConfig holds the gate stack's pass/fail thresholds: evidence and
// claim coverage ratios, the ambiguity resolver's short-question and
// concept-margin cutoffs, and the belief/rattling instability limits.
type GatesConfig struct {
	EvidenceMinRatio        float64
	EvidenceMinTokens       int
	EvidenceCriticMinRatio  float64
	ClaimMax                int
	ClaimMinRatio           float64
	ClaimMinTokens          int
	ClaimSupportRatio       float64
	AmbiguityShortTokens    int
	AmbiguityMinScore       float64
	AmbiguityMarginMin      float64
	AmbiguityMaxTerms       int
	VerificationAnchors     []string
	BeliefUnsupportedRatio  float64
	RattlingThreshold       float64
	RattlingReject          bool
}

// LongPromptConfig controls ingestion of an attached long-prompt document
// into retrievable chunks.
type LongPromptConfig struct {
	ChunkChars      int
	ChunkOverlap    int
	IngestThreshold int
}

// JobConfig sizes the async job store.
type JobConfig struct {
	Timeout      int // milliseconds
	QueueMaxSize int
}

// AlphaGovernorConfig bounds how much of the orchestrator's traffic emits
// full training trajectories versus live-only variants.
type AlphaGovernorConfig struct {
	Alpha      float64
	WindowSize int
	MinSamples int
}

// StreamConfig controls the progress/stream emitter's chunking behavior.
type StreamConfig struct {
	ChunkMaxChars int
	FlushMS       int
	MaxEvents     int
}

// ToolLogConfig sizes the tool-call log ring buffer and its per-tenant
// ingest rate limit.
type ToolLogConfig struct {
	BufferCapacity  int
	IngestRatePerS  float64
	IngestBurst     int
}

// LocalSkillsConfig points the opaque /local-call-spec, /tts/local,
// /stt/local proxy handlers at their upstream endpoints, each bounded by
// ProxyTimeoutMS; an empty URL means that route answers 503 not_configured.
type LocalSkillsConfig struct {
	CallSpecURL string
	TTSURL      string
	STTURL      string
	ProxyTimeoutMS int
}

// TelemetryConfig points GET /telemetry/{badges,panels} at an external
// snapshot store maintained out of process; an empty URL means those
// routes answer 503 not_configured.
type TelemetryConfig struct {
	SnapshotURL   string
	TimeoutMS     int
}

// Load loads configuration from environment variables, with sensible
// defaults for local development.
func Load() Config {
	return Config{
		Env:  getEnv("HELIX_ASK_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DB: db.Config{
			DSN:      buildDSN(),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},

		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "helix-ask"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},

		LLM: LLMConfig{
			APIKey:  getEnv("HELIX_ASK_LLM_API_KEY", ""),
			BaseURL: getEnv("HELIX_ASK_LLM_BASE_URL", ""),
			Model:   getEnv("HELIX_ASK_LLM_MODEL", "gpt-4o-mini"),
		},

		Redis: RedisConfig{
			URL:           getEnv("HELIX_ASK_REDIS_URL", "redis://localhost:6379/0"),
			JobStream:     getEnv("HELIX_ASK_JOB_STREAM", "helix-ask:jobs"),
			ConsumerGroup: getEnv("HELIX_ASK_JOB_GROUP", "helix-ask-workers"),
			Consumer:      getEnv("HELIX_ASK_JOB_CONSUMER", hostnameOr("worker-1")),
			DLQStream:     getEnv("HELIX_ASK_JOB_DLQ_STREAM", "helix-ask:jobs:dlq"),
		},

		ArangoDB: ArangoDBConfig{
			URL:      getEnv("HELIX_ASK_ARANGO_URL", ""),
			Username: getEnv("HELIX_ASK_ARANGO_USERNAME", "root"),
			Password: getEnv("HELIX_ASK_ARANGO_PASSWORD", ""),
			Database: getEnv("HELIX_ASK_ARANGO_DATABASE", "helix_lattice"),
		},

		Retrieval: RetrievalConfig{
			ContextFiles:     getEnvInt("HELIX_ASK_CONTEXT_FILES", 12),
			ContextChars:     getEnvInt("HELIX_ASK_CONTEXT_CHARS", 24000),
			RRFK:             getEnvInt("HELIX_ASK_RRF_K", 60),
			RRFWeightLexical: getEnvFloat("HELIX_ASK_RRF_WEIGHT_LEXICAL", 1.0),
			RRFWeightSymbol:  getEnvFloat("HELIX_ASK_RRF_WEIGHT_SYMBOL", 0.8),
			RRFWeightFuzzy:   getEnvFloat("HELIX_ASK_RRF_WEIGHT_FUZZY", 0.6),
			RRFWeightPath:    getEnvFloat("HELIX_ASK_RRF_WEIGHT_PATH", 1.5),
			FuzzyThreshold:   getEnvFloat("HELIX_ASK_FUZZY_THRESHOLD", 0.25),
			MMRLambda:        getEnvFloat("HELIX_ASK_MMR_LAMBDA", 0.72),
			RetryMaxAttempts: getEnvInt("HELIX_ASK_RETRIEVAL_RETRY_MAX", 2),
			TypesenseURL:     getEnv("HELIX_ASK_TYPESENSE_URL", ""),
		},

		Overflow: OverflowConfig{
			MaxRetries:            getEnvInt("HELIX_ASK_OVERFLOW_RETRY_MAX", 3),
			TrimRatio:             getEnvFloat("HELIX_ASK_OVERFLOW_RETRY_TRIM_RATIO", 0.7),
			ContextCapacityTokens: getEnvInt("HELIX_ASK_OVERFLOW_CONTEXT_CAPACITY", 128000),
		},

		Arbiter: ArbiterConfig{
			RepoThreshold:   getEnvFloat("HELIX_ASK_ARBITER_REPO_THRESHOLD", 0.62),
			HybridThreshold: getEnvFloat("HELIX_ASK_ARBITER_HYBRID_THRESHOLD", 0.35),
		},

		Gates: GatesConfig{
			EvidenceMinRatio:       getEnvFloat("HELIX_ASK_GATE_EVIDENCE_MIN_RATIO", 0.22),
			EvidenceMinTokens:      getEnvInt("HELIX_ASK_GATE_EVIDENCE_MIN_TOKENS", 2),
			EvidenceCriticMinRatio: getEnvFloat("HELIX_ASK_GATE_EVIDENCE_CRITIC_MIN_RATIO", 0.35),
			ClaimMax:               getEnvInt("HELIX_ASK_GATE_CLAIM_MAX", 9),
			ClaimMinRatio:          getEnvFloat("HELIX_ASK_GATE_CLAIM_MIN_RATIO", 0.2),
			ClaimMinTokens:         getEnvInt("HELIX_ASK_GATE_CLAIM_MIN_TOKENS", 1),
			ClaimSupportRatio:      getEnvFloat("HELIX_ASK_GATE_CLAIM_SUPPORT_RATIO", 0.6),
			AmbiguityShortTokens:   getEnvInt("HELIX_ASK_GATE_AMBIGUITY_SHORT_TOKENS", 3),
			AmbiguityMinScore:      getEnvFloat("HELIX_ASK_GATE_AMBIGUITY_MIN_SCORE", 0.55),
			AmbiguityMarginMin:     getEnvFloat("HELIX_ASK_GATE_AMBIGUITY_MARGIN_MIN", 0.12),
			AmbiguityMaxTerms:      getEnvInt("HELIX_ASK_GATE_AMBIGUITY_MAX_TERMS", 5),
			VerificationAnchors:    splitCSVEnv("HELIX_ASK_GATE_VERIFICATION_ANCHORS", nil),
			BeliefUnsupportedRatio: getEnvFloat("HELIX_ASK_GATE_BELIEF_UNSUPPORTED_RATIO", 0.4),
			RattlingThreshold:      getEnvFloat("HELIX_ASK_GATE_RATTLING_THRESHOLD", 0.5),
			RattlingReject:         getEnvBool("HELIX_ASK_GATE_RATTLING_REJECT", false),
		},

		LongPrompt: LongPromptConfig{
			ChunkChars:      getEnvInt("HELIX_ASK_LONGPROMPT_CHUNK_CHARS", 4000),
			ChunkOverlap:    getEnvInt("HELIX_ASK_LONGPROMPT_CHUNK_OVERLAP", 400),
			IngestThreshold: getEnvInt("HELIX_ASK_LONGPROMPT_INGEST_THRESHOLD", 40*1024),
		},

		Job: JobConfig{
			Timeout:      getEnvInt("HELIX_ASK_JOB_TIMEOUT_MS", 120000),
			QueueMaxSize: getEnvInt("HELIX_ASK_JOB_QUEUE_MAX", 1000),
		},

		AlphaGovernor: AlphaGovernorConfig{
			Alpha:      getEnvFloat("AGI_REFINERY_ALPHA_RATIO", 0.1),
			WindowSize: getEnvInt("AGI_REFINERY_ALPHA_WINDOW", 200),
			MinSamples: getEnvInt("AGI_REFINERY_ALPHA_MIN_SAMPLES", 20),
		},

		Stream: StreamConfig{
			ChunkMaxChars: getEnvInt("HELIX_ASK_STREAM_CHUNK_MAX_CHARS", 256),
			FlushMS:       getEnvInt("HELIX_ASK_STREAM_FLUSH_MS", 80),
			MaxEvents:     getEnvInt("HELIX_ASK_STREAM_MAX_EVENTS", 4096),
		},

		ToolLog: ToolLogConfig{
			BufferCapacity: getEnvInt("HELIX_ASK_TOOLLOG_BUFFER", 1000),
			IngestRatePerS: getEnvFloat("HELIX_ASK_TOOLLOG_INGEST_RATE", 5),
			IngestBurst:    getEnvInt("HELIX_ASK_TOOLLOG_INGEST_BURST", 10),
		},

		LocalSkills: LocalSkillsConfig{
			CallSpecURL:    getEnv("HELIX_ASK_LOCAL_CALL_SPEC_URL", ""),
			TTSURL:         getEnv("HELIX_ASK_LOCAL_TTS_URL", ""),
			STTURL:         getEnv("HELIX_ASK_LOCAL_STT_URL", ""),
			ProxyTimeoutMS: getEnvInt("HELIX_ASK_LOCAL_PROXY_TIMEOUT_MS", 15000),
		},

		Telemetry: TelemetryConfig{
			SnapshotURL: getEnv("HELIX_ASK_TELEMETRY_SNAPSHOT_URL", ""),
			TimeoutMS:   getEnvInt("HELIX_ASK_TELEMETRY_TIMEOUT_MS", 5000),
		},

		AdminAPIKey: getEnv("HELIX_ASK_ADMIN_API_KEY", ""),
	}
}

// buildDSN constructs the database connection string from individual env vars.
func buildDSN() string {
	host := getEnv("DATABASE_HOST", "localhost")
	port := getEnv("DATABASE_PORT", "5432")
	user := getEnv("DATABASE_USER", "postgres")
	password := getEnv("DATABASE_PASSWORD", "postgres")
	name := getEnv("DATABASE_NAME", "helix_ask")
	sslMode := getEnv("DATABASE_SSLMODE", "disable")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, name, sslMode,
	)
}

// IsProduction returns true if running in production environment.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment returns true if running in development environment.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func splitCSVEnv(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hostnameOr(fallback string) string {
	if h, err := os.Hostname(); err == nil && strings.TrimSpace(h) != "" {
		return h
	}
	return fallback
}
