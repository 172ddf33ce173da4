package orchestrator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/orchestrator"
)

type fakeAskRunner struct {
	envelope  domain.AnswerEnvelope
	err       error
	questions *[]string
}

func (f fakeAskRunner) Ask(_ context.Context, question string) (domain.AnswerEnvelope, error) {
	if f.questions != nil {
		*f.questions = append(*f.questions, question)
	}
	return f.envelope, f.err
}

func TestBuildInjectsPhysicsToolsOnMatchingGoal(t *testing.T) {
	plan := orchestrator.Build("is a traversable warp corridor viable here?", domain.PlanDirectives{})

	require.Len(t, plan.Steps, 4)
	assert.Equal(t, orchestrator.ToolWarpAsk, plan.Steps[0].Tool)
	assert.Equal(t, orchestrator.ToolWarpViability, plan.Steps[1].Tool)
	assert.Equal(t, orchestrator.ToolGRGrounding, plan.Steps[2].Tool)
	assert.Equal(t, "answer", plan.Steps[3].Name)
	assert.ElementsMatch(t, plan.Steps[3].AppendSummaries, []string{
		orchestrator.ToolWarpAsk, orchestrator.ToolWarpViability, orchestrator.ToolGRGrounding,
	})
}

func TestBuildSkipsPhysicsToolsOnOrdinaryGoal(t *testing.T) {
	plan := orchestrator.Build("how does the retriever fuse channels?", domain.PlanDirectives{})

	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "answer", plan.Steps[0].Name)
	assert.Empty(t, plan.Steps[0].AppendSummaries)
}

func TestExecuteRunsStepsSequentiallyAndAppendsSummaries(t *testing.T) {
	var questions []string
	manifest := orchestrator.NewManifest(
		orchestrator.NewWarpViabilityTool(),
		orchestrator.NewGRGroundingTool(),
		orchestrator.NewWarpAskTool(fakeAskRunner{envelope: domain.AnswerEnvelope{AnswerText: "final answer", Format: domain.FormatBrief}, questions: &questions}),
	)
	o := orchestrator.New(manifest)

	plan := orchestrator.Build("is a warp corridor viable?", domain.PlanDirectives{})
	result := o.Execute(context.Background(), plan, nil)

	require.NoError(t, result.Err)
	require.Len(t, result.Outcomes, 4)
	assert.Equal(t, "final answer", result.Final.Summary)
	require.Len(t, questions, 2)
	assert.Contains(t, questions[1], "warp-viability is not configured in this deployment")
	assert.Contains(t, questions[1], "gr-grounding is not configured in this deployment")
}

func TestExecuteSurfacesSchemaMismatchOnFinalStep(t *testing.T) {
	manifest := orchestrator.NewManifest(
		orchestrator.NewWarpAskTool(fakeAskRunner{envelope: domain.AnswerEnvelope{AnswerText: ""}}),
	)
	o := orchestrator.New(manifest)

	plan := orchestrator.Build("how does retrieval work?", domain.PlanDirectives{})
	schema := func(r orchestrator.Result) error {
		if r.Summary == "" {
			return errors.New("empty answer text")
		}
		return nil
	}

	result := o.Execute(context.Background(), plan, schema)
	require.Error(t, result.Err)
	assert.Equal(t, domain.ErrFinalOutputSchemaMismatch, result.ErrCode)
}

func TestExecuteClassifiesToolError(t *testing.T) {
	manifest := orchestrator.NewManifest(
		orchestrator.NewWarpAskTool(fakeAskRunner{err: errors.New("received 429 too many requests")}),
	)
	o := orchestrator.New(manifest)

	plan := orchestrator.Build("how does retrieval work?", domain.PlanDirectives{})
	result := o.Execute(context.Background(), plan, nil)

	require.Error(t, result.Err)
	assert.Equal(t, domain.ErrExecutionRateLimited, result.ErrCode)
}

func TestExecuteUnknownToolReportsInvalidArgs(t *testing.T) {
	o := orchestrator.New(orchestrator.NewManifest())
	plan := orchestrator.Plan{Goal: "g", Steps: []orchestrator.Step{{Name: "x", Tool: "does-not-exist"}}}

	result := o.Execute(context.Background(), plan, nil)
	require.Error(t, result.Err)
	assert.Equal(t, domain.ErrExecutionInvalidArgs, result.ErrCode)
}
