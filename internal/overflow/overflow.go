// Package overflow wraps an LLM completion call with the
// drop-context-then-drop-output retry policy: predictively shrink an
// oversized prompt before the first call, and reactively apply the next
// shrink step and retry each time the model rejects the prompt for
// exceeding its context window, up to MaxRetries.
package overflow

import (
	"context"
	"fmt"
	"strings"

	"basegraph.app/helixask/common/llm"
)

const contextHeader = "Context:"
const answerMarker = "ANSWER_START"

// Config bounds the retry loop and the model's effective context window.
type Config struct {
	MaxRetries            int
	ContextCapacityTokens int
}

func (c Config) withDefaults() Config {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.ContextCapacityTokens == 0 {
		c.ContextCapacityTokens = 128000
	}
	return c
}

// Request is a completion call eligible for overflow retry.
type Request struct {
	SystemPrompt     string
	UserPrompt       string
	MaxTokens        int
	Temperature      *float64
	AllowContextDrop bool
	Label            string
}

// Debug records which shrink steps were applied, for the caller's debug
// metadata surface.
type Debug struct {
	Label    string
	Steps    []string
	Attempts int
}

// Runner executes Requests through an llm.Client, applying the overflow
// policy predictively and reactively.
type Runner struct {
	client llm.Client
	cfg    Config
}

func New(client llm.Client, cfg Config) *Runner {
	return &Runner{client: client, cfg: cfg.withDefaults()}
}

// EstimateTokens approximates token count as ceil(len/4), the estimator
// the predictive check uses.
func EstimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return (len(s) + 3) / 4
}

// Run executes the completion, predictively shrinking the prompt if it
// looks likely to overflow, then reactively retrying on an actual
// context-overflow error by applying the next available shrink step.
func (r *Runner) Run(ctx context.Context, req Request) (*llm.CompletionResponse, Debug, error) {
	debug := Debug{Label: req.Label}
	state := newShrinkState(req.UserPrompt, req.MaxTokens, req.AllowContextDrop)

	estimated := EstimateTokens(req.SystemPrompt) + EstimateTokens(state.prompt)
	if estimated+state.maxTokens > r.cfg.ContextCapacityTokens {
		if step, ok := state.applyNext(r.cfg.ContextCapacityTokens, estimated); ok {
			debug.Steps = append(debug.Steps, step)
		}
	}

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		resp, err := r.client.Complete(ctx, llm.CompletionRequest{
			SystemPrompt: req.SystemPrompt,
			UserPrompt:   state.prompt,
			MaxTokens:    state.maxTokens,
			Temperature:  req.Temperature,
		})
		debug.Attempts = attempt + 1
		if err == nil {
			return resp, debug, nil
		}
		if !llm.IsContextOverflow(err) {
			return nil, debug, fmt.Errorf("overflow runner %q: %w", req.Label, err)
		}

		step, ok := state.applyNext(r.cfg.ContextCapacityTokens, estimated)
		if !ok {
			return nil, debug, fmt.Errorf("overflow runner %q: no shrink step left: %w", req.Label, err)
		}
		debug.Steps = append(debug.Steps, step)
	}

	return nil, debug, fmt.Errorf("overflow runner %q: exhausted %d attempts", req.Label, r.cfg.MaxRetries)
}

// shrinkState tracks which of the two overflow steps remain applicable:
// dropping the Context section, then reducing max_tokens.
type shrinkState struct {
	prompt           string
	maxTokens        int
	allowContextDrop bool
	contextDropped   bool
	tokensReduced    bool
}

func newShrinkState(prompt string, maxTokens int, allowContextDrop bool) *shrinkState {
	return &shrinkState{prompt: prompt, maxTokens: maxTokens, allowContextDrop: allowContextDrop}
}

// applyNext applies the next unused step in order (drop context, then
// reduce max_tokens) and reports its name, or reports ok=false if neither
// step is applicable anymore.
func (s *shrinkState) applyNext(contextCapacity, promptTokens int) (string, bool) {
	if s.allowContextDrop && !s.contextDropped {
		if dropped, ok := dropContextSection(s.prompt); ok {
			s.prompt = dropped
			s.contextDropped = true
			return "drop_context", true
		}
		s.contextDropped = true // no Context section to drop; don't retry this step
	}

	if !s.tokensReduced {
		reduced := contextCapacity - promptTokens - 8
		if reduced > 0 && reduced < s.maxTokens {
			s.maxTokens = reduced
		}
		s.tokensReduced = true
		return "reduce_max_tokens", true
	}

	return "", false
}

// dropContextSection replaces the Context: section's body, up to the
// ANSWER_START marker, with a single placeholder line.
func dropContextSection(prompt string) (string, bool) {
	headerIdx := strings.Index(prompt, contextHeader)
	if headerIdx < 0 {
		return prompt, false
	}
	bodyStart := headerIdx + len(contextHeader)

	markerIdx := strings.Index(prompt[bodyStart:], answerMarker)
	if markerIdx < 0 {
		return prompt, false
	}
	absMarker := bodyStart + markerIdx

	return prompt[:bodyStart] + "\nContext omitted due to overflow.\n" + prompt[absMarker:], true
}
