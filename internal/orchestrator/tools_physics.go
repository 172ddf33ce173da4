package orchestrator

import (
	"context"
	"fmt"

	"basegraph.app/helixask/internal/domain"
)

const (
	ToolWarpAsk       = "warp-ask"
	ToolWarpViability = "warp-viability"
	ToolGRGrounding   = "gr-grounding"
)

// AskRunner is the narrow capability warp-ask needs from the Ask
// pipeline: enough to re-enter it as a sub-call without the orchestrator
// package importing internal/ask directly.
type AskRunner interface {
	Ask(ctx context.Context, question string) (domain.AnswerEnvelope, error)
}

type warpAskTool struct {
	runner AskRunner
}

// NewWarpAskTool wires the warp-ask step to an Ask pipeline so a plan can
// recurse into a full question/answer cycle as one of its steps.
func NewWarpAskTool(runner AskRunner) Tool {
	return warpAskTool{runner: runner}
}

func (t warpAskTool) Name() string    { return ToolWarpAsk }
func (t warpAskTool) Version() string { return "v1" }

func (t warpAskTool) Handle(ctx context.Context, params map[string]any) (Result, error) {
	question, _ := params["question"].(string)
	if question == "" {
		return Result{}, fmt.Errorf("warp-ask: missing question param")
	}
	if summaries, ok := params["context_summaries"].([]string); ok && len(summaries) > 0 {
		question += "\n\nContext from earlier steps:"
		for _, s := range summaries {
			question += "\n- " + s
		}
	}

	envelope, err := t.runner.Ask(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("warp-ask: %w", err)
	}

	return Result{
		Summary: envelope.AnswerText,
		Data: map[string]any{
			"format":        string(envelope.Format),
			"tier":          string(envelope.Tier),
			"evidence_refs": envelope.EvidenceRefs,
		},
	}, nil
}

// notConfiguredTool backs warp-viability and gr-grounding: the viability
// physics kernel this spec routes to is out of scope, so these steps
// return a typed "not configured" result instead of executing anything,
// so a physics plan still runs on to its final answer step.
type notConfiguredTool struct {
	name string
}

// NewWarpViabilityTool returns the warp-viability stub adapter.
func NewWarpViabilityTool() Tool { return notConfiguredTool{name: ToolWarpViability} }

// NewGRGroundingTool returns the gr-grounding stub adapter.
func NewGRGroundingTool() Tool { return notConfiguredTool{name: ToolGRGrounding} }

func (t notConfiguredTool) Name() string    { return t.name }
func (t notConfiguredTool) Version() string { return "v1" }

func (t notConfiguredTool) Handle(_ context.Context, _ map[string]any) (Result, error) {
	return Result{
		Summary: fmt.Sprintf("%s is not configured in this deployment", t.name),
		Data:    map[string]any{"configured": false},
	}, nil
}
