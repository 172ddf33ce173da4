package orchestrator

import (
	"regexp"

	"basegraph.app/helixask/internal/domain"
)

// Step is one compiled unit of plan execution: a tool invocation plus the
// names of earlier steps whose summaries should be appended to its params
// before it runs.
type Step struct {
	Name            string
	Tool            string
	Params          map[string]any
	AppendSummaries []string
}

// Plan is a goal compiled down to an ordered list of executor steps.
type Plan struct {
	Goal  string
	Steps []Step
}

var physicsIntentPattern = regexp.MustCompile(`(?i)\bwarp\b|\bwormhole\b|\bgeneral relativity\b|\bgr[- ]groundin|\bviabilit(y|ies)\b`)

// Build compiles a goal plus its plan directives into an executable Plan.
// The base step answers the goal directly; when the goal's language
// suggests physics-flavored intent, the three injected tool steps are
// appended ahead of it and wired in as appendSummaries sources so the
// base step's output embeds what they reported.
func Build(goal string, directives domain.PlanDirectives) Plan {
	var steps []Step
	var injectedNames []string

	if physicsIntentPattern.MatchString(goal) {
		for _, name := range []string{ToolWarpAsk, ToolWarpViability, ToolGRGrounding} {
			steps = append(steps, Step{
				Name:   name,
				Tool:   name,
				Params: map[string]any{"question": goal},
			})
			injectedNames = append(injectedNames, name)
		}
	}

	steps = append(steps, Step{
		Name:            "answer",
		Tool:            ToolWarpAsk,
		Params:          map[string]any{"question": goal},
		AppendSummaries: injectedNames,
	})

	return Plan{Goal: goal, Steps: steps}
}
