package dto

import (
	"basegraph.app/helixask/internal/orchestrator"
)

// PlanRequest is the POST /plan body: a goal plus optional prior context.
type PlanRequest struct {
	Prompt    string `json:"prompt"`
	Goal      string `json:"goal"`
	Context   string `json:"context"`
	TraceID   string `json:"traceId"`
	SessionID string `json:"sessionId"`
}

// Text returns goal, falling back to prompt.
func (r PlanRequest) Text() string {
	if r.Goal != "" {
		return r.Goal
	}
	return r.Prompt
}

type StepDTO struct {
	Name            string         `json:"name"`
	Tool            string         `json:"tool"`
	Params          map[string]any `json:"params,omitempty"`
	AppendSummaries []string       `json:"append_summaries,omitempty"`
}

func toStepDTOs(steps []orchestrator.Step) []StepDTO {
	out := make([]StepDTO, 0, len(steps))
	for _, s := range steps {
		out = append(out, StepDTO{Name: s.Name, Tool: s.Tool, Params: s.Params, AppendSummaries: s.AppendSummaries})
	}
	return out
}

// PlanResponse is the POST /plan body.
type PlanResponse struct {
	TraceID       string    `json:"traceId"`
	Goal          string    `json:"goal"`
	PlanDSL       string    `json:"plan_dsl"`
	PlanSteps     []StepDTO `json:"plan_steps"`
	ToolManifest  []string  `json:"tool_manifest"`
	ExecutorSteps []StepDTO `json:"executor_steps"`
	Strategy      string    `json:"strategy"`
	TaskTrace     []string  `json:"task_trace"`
}

func ToPlanResponse(traceID string, plan orchestrator.Plan, manifest orchestrator.Manifest, strategy string) PlanResponse {
	names := make([]string, 0, len(manifest))
	for name := range manifest {
		names = append(names, name)
	}
	trace := make([]string, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		trace = append(trace, s.Name)
	}
	return PlanResponse{
		TraceID:       traceID,
		Goal:          plan.Goal,
		PlanDSL:       planDSL(plan),
		PlanSteps:     toStepDTOs(plan.Steps),
		ToolManifest:  names,
		ExecutorSteps: toStepDTOs(plan.Steps),
		Strategy:      strategy,
		TaskTrace:     trace,
	}
}

// planDSL renders a plan as the line-oriented form the original
// plan-pass textual protocol used, one STEP per line naming its tool.
func planDSL(plan orchestrator.Plan) string {
	dsl := "GOAL: " + plan.Goal + "\n"
	for _, s := range plan.Steps {
		dsl += "STEP " + s.Name + " -> " + s.Tool + "\n"
	}
	return dsl
}

// ExecuteRequest is the POST /execute body.
type ExecuteRequest struct {
	TraceID      string `json:"traceId"`
	DebugSources bool   `json:"debugSources"`
}

type StepOutcomeDTO struct {
	Step    string         `json:"step"`
	Summary string         `json:"summary,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	ErrCode string         `json:"error_code,omitempty"`
}

// ExecuteResponse is the POST /execute body: the final step's answer plus
// the citations it grounds on and a short rationale for why each citation
// belongs, alongside the full per-step outcome trace.
type ExecuteResponse struct {
	TraceID    string           `json:"traceId"`
	Outcomes   []StepOutcomeDTO `json:"outcomes"`
	Summary    string           `json:"summary"`
	Citations  []string         `json:"citations,omitempty"`
	WhyBelongs []string         `json:"why_belongs,omitempty"`
	Error      string           `json:"error,omitempty"`
	ErrCode    string           `json:"error_code,omitempty"`
}

func ToExecuteResponse(traceID string, result orchestrator.ExecutionResult, citations, whyBelongs []string) ExecuteResponse {
	outcomes := make([]StepOutcomeDTO, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		dto := StepOutcomeDTO{Step: o.Step, Summary: o.Result.Summary, Data: o.Result.Data}
		if o.Err != nil {
			dto.Error = o.Err.Error()
			dto.ErrCode = string(o.ErrCode)
		}
		outcomes = append(outcomes, dto)
	}
	resp := ExecuteResponse{
		TraceID:    traceID,
		Outcomes:   outcomes,
		Summary:    result.Final.Summary,
		Citations:  citations,
		WhyBelongs: whyBelongs,
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
		resp.ErrCode = string(result.ErrCode)
	}
	return resp
}
