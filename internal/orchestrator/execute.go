package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"basegraph.app/helixask/common/logger"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/queue"
)

// StepOutcome is one executed step's result, or its classified failure.
type StepOutcome struct {
	Step    string
	Result  Result
	Err     error
	ErrCode domain.ErrorCode
}

// ExecutionResult is the full record of a plan run, returned to the caller.
type ExecutionResult struct {
	Plan     Plan
	Outcomes []StepOutcome
	Final    Result
	Err      error
	ErrCode  domain.ErrorCode
}

// SchemaCheck validates a tool's final Result against whatever shape the
// calling routine declared it needs. A nil SchemaCheck skips validation.
type SchemaCheck func(Result) error

// Orchestrator runs plans against a Manifest of registered tools.
type Orchestrator struct {
	tools  Manifest
	Events EventPublisher
}

// New constructs an Orchestrator bound to a tool manifest.
func New(tools Manifest) *Orchestrator {
	return &Orchestrator{tools: tools}
}

// Execute runs a plan's steps sequentially. Each step's params are
// extended with the summaries of any steps named in AppendSummaries
// before the tool runs. The last step's output is checked against
// finalSchema if provided; a mismatch is surfaced as
// final_output_schema_mismatch rather than as the tool's own error.
func (o *Orchestrator) Execute(ctx context.Context, plan Plan, finalSchema SchemaCheck) ExecutionResult {
	res := ExecutionResult{Plan: plan}
	summaries := make(map[string]string, len(plan.Steps))
	traceID := logger.GetLogFields(ctx).TraceID

	for i, step := range plan.Steps {
		start := time.Now()

		tool, ok := o.tools[step.Tool]
		if !ok {
			err := fmt.Errorf("orchestrator: tool %q not registered", step.Tool)
			outcome := StepOutcome{Step: step.Name, Err: err, ErrCode: domain.ErrExecutionInvalidArgs}
			res.Outcomes = append(res.Outcomes, outcome)
			res.Err = err
			res.ErrCode = outcome.ErrCode
			o.publishStep(ctx, traceID, step, start, outcome.ErrCode)
			return res
		}

		params := withAppendedSummaries(step.Params, step.AppendSummaries, summaries)

		stepSpan := logger.StartSpan(ctx, "orchestrator.step."+step.Tool)
		result, err := tool.Handle(stepSpan.Context(), params)
		if err != nil {
			stepSpan.RecordError(err)
			stepSpan.End()
			code := classifyError(err)
			outcome := StepOutcome{Step: step.Name, Err: err, ErrCode: code}
			res.Outcomes = append(res.Outcomes, outcome)
			res.Err = err
			res.ErrCode = code
			o.publishStep(ctx, traceID, step, start, code)
			return res
		}
		stepSpan.End()

		summaries[step.Name] = result.Summary
		res.Outcomes = append(res.Outcomes, StepOutcome{Step: step.Name, Result: result})
		o.publishStep(ctx, traceID, step, start, "")

		if i == len(plan.Steps)-1 {
			if finalSchema != nil {
				if schemaErr := finalSchema(result); schemaErr != nil {
					res.Err = fmt.Errorf("%s: %w", domain.ErrFinalOutputSchemaMismatch, schemaErr)
					res.ErrCode = domain.ErrFinalOutputSchemaMismatch
					return res
				}
			}
			res.Final = result
		}
	}

	return res
}

// publishStep reports one executed step to Events, if configured. errCode
// empty means the step succeeded. Publishing never blocks plan execution on
// a slow or unreachable event log: errors are logged, not returned.
func (o *Orchestrator) publishStep(ctx context.Context, traceID *string, step Step, start time.Time, errCode domain.ErrorCode) {
	if o.Events == nil {
		return
	}

	id := ""
	if traceID != nil {
		id = *traceID
	}

	msg := queue.EventMessage{
		TraceID:    id,
		Step:       step.Name,
		Tool:       step.Tool,
		Success:    errCode == "",
		ErrCode:    string(errCode),
		DurationMs: time.Since(start).Milliseconds(),
	}

	if err := o.Events.Publish(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish step event", "error", err, "step", step.Name)
	}
}

func withAppendedSummaries(params map[string]any, refs []string, summaries map[string]string) map[string]any {
	if len(refs) == 0 {
		return params
	}

	merged := make(map[string]any, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}

	var appended []string
	for _, ref := range refs {
		if s, ok := summaries[ref]; ok && s != "" {
			appended = append(appended, s)
		}
	}
	merged["context_summaries"] = appended
	return merged
}

// classifyError maps a raw execution error into the closed error taxonomy.
// Order matters: the first matching classifier wins.
func classifyError(err error) domain.ErrorCode {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.ErrExecutionTimeout
	case errors.Is(err, context.Canceled):
		return domain.ErrExecutionTimeout
	}

	msg := err.Error()
	for _, c := range errorClassifiers {
		if c.pattern.MatchString(msg) {
			return c.code
		}
	}
	return domain.ErrExecutionToolError
}

type errorClassifier struct {
	pattern *regexp.Regexp
	code    domain.ErrorCode
}

var errorClassifiers = []errorClassifier{
	{regexp.MustCompile(`(?i)rate limit|429|too many requests`), domain.ErrExecutionRateLimited},
	{regexp.MustCompile(`(?i)unauthorized|forbidden|401|403|invalid api key`), domain.ErrExecutionAuth},
	{regexp.MustCompile(`(?i)policy|content filter|blocked by`), domain.ErrExecutionPolicy},
	{regexp.MustCompile(`(?i)connection refused|no such host|network|dial tcp|timeout dialing`), domain.ErrExecutionNetwork},
	{regexp.MustCompile(`(?i)invalid argument|missing .* param|bad request`), domain.ErrExecutionInvalidArgs},
	{regexp.MustCompile(`(?i)schema mismatch|unexpected shape|contract mismatch`), domain.ErrExecutionToolContractMismatch},
	{regexp.MustCompile(`(?i)playwright|browser crashed`), domain.ErrExecutionPlaywrightCrash},
	{regexp.MustCompile(`(?i)out of memory|resource exhausted|disk full`), domain.ErrExecutionResourceExhaustion},
	{regexp.MustCompile(`(?i)\b5\d\d\b|internal server error|bad gateway|service unavailable`), domain.ErrExecutionTool5xx},
}
