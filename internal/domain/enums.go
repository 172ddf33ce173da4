package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Domain is the intent's routing domain.
type Domain string

const (
	DomainRepo        Domain = "repo"
	DomainHybrid       Domain = "hybrid"
	DomainGeneral      Domain = "general"
	DomainFalsifiable  Domain = "falsifiable"
)

func (d Domain) Valid() bool {
	switch d {
	case DomainRepo, DomainHybrid, DomainGeneral, DomainFalsifiable:
		return true
	}
	return false
}

func (d *Domain) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v := Domain(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return fmt.Errorf("invalid domain %q", s)
	}
	*d = v
	return nil
}

// Tier is a falsifiability/confidence tier, F0 (speculative) through F3 (verified).
type Tier string

const (
	TierF0 Tier = "F0"
	TierF1 Tier = "F1"
	TierF2 Tier = "F2"
	TierF3 Tier = "F3"
)

func (t Tier) Valid() bool {
	switch t {
	case TierF0, TierF1, TierF2, TierF3:
		return true
	}
	return false
}

// Strategy selects how the synthesizer and evidence distiller approach the answer.
type Strategy string

const (
	StrategyConceptDefinition Strategy = "concept_definition"
	StrategyHybridExplain     Strategy = "hybrid_explain"
	StrategyConstraintReport  Strategy = "constraint_report"
	StrategyRepoExplain       Strategy = "repo_explain"
	StrategyIdeology          Strategy = "ideology"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyConceptDefinition, StrategyHybridExplain, StrategyConstraintReport,
		StrategyRepoExplain, StrategyIdeology:
		return true
	}
	return false
}

// FormatKind is the shape the synthesized answer must take.
type FormatKind string

const (
	FormatBrief   FormatKind = "brief"
	FormatCompare FormatKind = "compare"
	FormatSteps   FormatKind = "steps"
	FormatAuto    FormatKind = "auto"
)

func (f FormatKind) Valid() bool {
	switch f {
	case FormatBrief, FormatCompare, FormatSteps, FormatAuto:
		return true
	}
	return false
}

// Channel identifies which retrieval channel produced a Candidate.
type Channel string

const (
	ChannelLexical Channel = "lexical"
	ChannelSymbol  Channel = "symbol"
	ChannelFuzzy   Channel = "fuzzy"
	ChannelPath    Channel = "path"
	ChannelGrep    Channel = "grep"
)

// AnswerMode is the envelope's verbosity mode.
type AnswerMode string

const (
	ModeBrief    AnswerMode = "brief"
	ModeStandard AnswerMode = "standard"
	ModeExtended AnswerMode = "extended"
)

// JobStatus is a Job Record's position in the queued -> running -> {completed,failed} graph.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobQueued, JobRunning, JobCompleted, JobFailed:
		return true
	}
	return false
}

func (s *JobStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v := JobStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !v.Valid() {
		return fmt.Errorf("invalid job status %q", raw)
	}
	*s = v
	return nil
}

// TrajectoryOrigin distinguishes live traffic from synthetic/variant traffic
// for the alpha governor's admission ratio.
type TrajectoryOrigin string

const (
	OriginLive    TrajectoryOrigin = "live"
	OriginVariant TrajectoryOrigin = "variant"
)

// ErrorCode is the closed error taxonomy mapped from raw execution errors.
type ErrorCode string

const (
	ErrExecutionTimeout            ErrorCode = "execution_timeout"
	ErrExecutionRateLimited        ErrorCode = "execution_rate_limited"
	ErrExecutionAuth               ErrorCode = "execution_auth"
	ErrExecutionPolicy             ErrorCode = "execution_policy"
	ErrExecutionNetwork            ErrorCode = "execution_network"
	ErrExecutionInvalidArgs        ErrorCode = "execution_invalid_args"
	ErrExecutionToolContractMismatch ErrorCode = "execution_tool_contract_mismatch"
	ErrExecutionPlaywrightCrash    ErrorCode = "execution_playwright_crash"
	ErrExecutionResourceExhaustion ErrorCode = "execution_resource_exhaustion"
	ErrExecutionTool5xx            ErrorCode = "execution_tool_5xx"
	ErrExecutionToolError          ErrorCode = "execution_tool_error" // fallback

	ErrFinalOutputSchemaMismatch ErrorCode = "final_output_schema_mismatch"

	ErrKnowledgeProjectsDisabled ErrorCode = "knowledge_projects_disabled"
	ErrKnowledgeContextInvalid   ErrorCode = "knowledge_context_invalid"
	ErrKnowledgeContextMismatch  ErrorCode = "knowledge_context_mismatch"

	ErrAlphaGovernorEngaged ErrorCode = "alpha_governor_engaged"
)

// RequiredSlot is a content slot the synthesized answer must cover.
type RequiredSlot string

const (
	SlotDefinition    RequiredSlot = "definition"
	SlotRepoMapping   RequiredSlot = "repo_mapping"
	SlotVerification  RequiredSlot = "verification"
	SlotFailurePath   RequiredSlot = "failure_path"
	SlotFlow          RequiredSlot = "flow"
)

// Surface is a closed set of evidence surfaces plan directives can prefer or avoid.
type Surface string

const (
	SurfaceDocs      Surface = "docs"
	SurfaceEthos     Surface = "ethos"
	SurfaceKnowledge Surface = "knowledge"
	SurfaceTests     Surface = "tests"
	SurfaceCode      Surface = "code"
)

func (s Surface) Valid() bool {
	switch s {
	case SurfaceDocs, SurfaceEthos, SurfaceKnowledge, SurfaceTests, SurfaceCode:
		return true
	}
	return false
}
