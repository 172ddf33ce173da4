// Package dto holds the request/response shapes the HTTP transport binds
// against, kept separate from the domain types the ask pipeline works in.
package dto

import (
	"time"

	"basegraph.app/helixask/internal/ask"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/gates"
)

// AskRequest is the POST /ask and POST /ask/jobs body.
type AskRequest struct {
	Prompt      string   `json:"prompt"`
	Question    string   `json:"question"`
	Context     string   `json:"context"`
	SearchQuery string   `json:"searchQuery"`
	TopK        int      `json:"topK"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
	Seed        *int64   `json:"seed"`
	Stop        []string `json:"stop"`
	Debug       bool     `json:"debug"`
	DryRun      bool     `json:"dryRun"`
	Verbosity   string   `json:"verbosity"`
	PersonaID   string   `json:"personaId"`
	SessionID   string   `json:"sessionId"`
	TraceID     string   `json:"traceId"`
}

// Text returns prompt, falling back to question: the wire protocol accepts
// either field name for the same thing.
func (r AskRequest) Text() string {
	if r.Prompt != "" {
		return r.Prompt
	}
	return r.Question
}

// ToQuestion builds a domain.Question from the wire request, stamping
// ReceivedAt and generating a traceId when the caller didn't supply one.
func (r AskRequest) ToQuestion(traceID string, now time.Time) domain.Question {
	id := r.TraceID
	if id == "" {
		id = traceID
	}
	return domain.Question{
		Prompt:      r.Text(),
		Context:     r.Context,
		SearchQuery: r.SearchQuery,
		TopK:        r.TopK,
		MaxTokens:   r.MaxTokens,
		Temperature: r.Temperature,
		Seed:        r.Seed,
		Stop:        r.Stop,
		Debug:       r.Debug,
		DryRun:      r.DryRun,
		Verbosity:   r.Verbosity,
		PersonaID:   r.PersonaID,
		SessionID:   r.SessionID,
		TraceID:     id,
		ReceivedAt:  now,
	}
}

// AskResponse is the POST /ask success body.
type AskResponse struct {
	Text               string              `json:"text"`
	Envelope           *EnvelopeDTO        `json:"envelope,omitempty"`
	Debug              *DebugDTO           `json:"debug,omitempty"`
	PromptIngested     bool                `json:"prompt_ingested"`
	PromptIngestSource string              `json:"prompt_ingest_source,omitempty"`
	PromptIngestReason string              `json:"prompt_ingest_reason,omitempty"`
	DryRun             bool                `json:"dry_run,omitempty"`
}

// EnvelopeDTO mirrors domain.AnswerEnvelope for the wire.
type EnvelopeDTO struct {
	AnswerText    string   `json:"answer_text"`
	Format        string   `json:"format"`
	Tier          string   `json:"tier"`
	SecondaryTier string   `json:"secondary_tier,omitempty"`
	Mode          string   `json:"mode"`
	EvidenceRefs  []string `json:"evidence_refs,omitempty"`
	TraceID       string   `json:"trace_id,omitempty"`
}

func ToEnvelopeDTO(e domain.AnswerEnvelope) EnvelopeDTO {
	return EnvelopeDTO{
		AnswerText:    e.AnswerText,
		Format:        string(e.Format),
		Tier:          string(e.Tier),
		SecondaryTier: string(e.SecondaryTier),
		Mode:          string(e.Mode),
		EvidenceRefs:  e.EvidenceRefs,
		TraceID:       e.TraceID,
	}
}

// DebugDTO surfaces the gate report and retrieval evidence when the
// request asked for debug.
type DebugDTO struct {
	Gates         []GateVerdictDTO `json:"gates"`
	Clarify       bool             `json:"clarify"`
	ClarifyReason string           `json:"clarify_reason,omitempty"`
	Files         []string         `json:"files,omitempty"`
	ResolvedDomain string          `json:"resolved_domain,omitempty"`
}

type GateVerdictDTO struct {
	Gate    string             `json:"gate"`
	Passed  bool               `json:"passed"`
	Reason  string             `json:"reason,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func ToDebugDTO(report gates.Report, evidence domain.EvidencePack, resolvedDomain domain.Domain) DebugDTO {
	verdicts := make([]GateVerdictDTO, 0, len(report.Verdicts))
	for _, v := range report.Verdicts {
		verdicts = append(verdicts, GateVerdictDTO{Gate: v.Gate, Passed: v.Passed, Reason: v.Reason, Metrics: v.Metrics})
	}
	return DebugDTO{
		Gates:          verdicts,
		Clarify:        report.Clarify,
		ClarifyReason:  report.ClarifyReason,
		Files:          evidence.Files,
		ResolvedDomain: string(resolvedDomain),
	}
}

// ToAskResponse builds the success body from a pipeline result.
func ToAskResponse(result ask.Result, dryRun, debug bool) AskResponse {
	resp := AskResponse{
		Text:           result.Envelope.AnswerText,
		PromptIngested: len(result.Evidence.Files) > 0,
		DryRun:         dryRun,
	}
	env := ToEnvelopeDTO(result.Envelope)
	resp.Envelope = &env
	if debug {
		d := ToDebugDTO(result.Gates, result.Evidence, result.Domain)
		resp.Debug = &d
	}
	return resp
}

// ErrorResponse is the shape every non-2xx JSON response uses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}
