// Package planpass runs the plan-pass micro-LLM call that produces plan
// directives (preferred/avoid surfaces, must-include globs, required
// slots, clarify) and query hints, and parses its marker-delimited output.
package planpass

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"basegraph.app/helixask/common/llm"
	"basegraph.app/helixask/internal/domain"
)

const (
	markerPlanStart    = "PLAN_START"
	markerPlanEnd      = "PLAN_END"
	markerQueriesStart = "QUERIES_START"
	markerQueriesEnd   = "QUERIES_END"

	maxTemperature = 0.4
	defaultQueryCap = 6
)

// Planner issues the plan-pass call and parses its directive block.
type Planner struct {
	client   llm.Client
	queryCap int
}

func New(client llm.Client, queryCap int) *Planner {
	if queryCap <= 0 {
		queryCap = defaultQueryCap
	}
	return &Planner{client: client, queryCap: queryCap}
}

// Plan runs the plan-pass LLM call and merges its query hints with the
// caller's base queries, preserving order and deduping, up to the cap.
func (p *Planner) Plan(ctx context.Context, question domain.Question, baseQueries []string) (domain.PlanDirectives, []string, error) {
	temp := maxTemperature
	resp, err := p.client.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildUserPrompt(question, baseQueries),
		MaxTokens:    512,
		Temperature:  &temp,
	})
	if err != nil {
		return domain.PlanDirectives{}, nil, fmt.Errorf("plan-pass completion: %w", err)
	}

	directives, queryHints := Parse(resp.Text)
	merged := mergeQueries(baseQueries, queryHints, p.queryCap)
	directives.QueryHints = queryHints
	return directives, merged, nil
}

const systemPrompt = `You are the plan-pass stage of a retrieval-augmented answering engine.
Given a question, emit a directive block between PLAN_START and PLAN_END.
Inside, emit zero or more of these directive lines:
preferred_surfaces: comma-separated list, only from {docs, ethos, knowledge, tests, code}
avoid_surfaces: comma-separated list, only from {docs, ethos, knowledge, tests, code}
must_include_globs: comma-separated repo-relative glob patterns
required_slots: comma-separated list, only from {definition, repo_mapping, verification, failure_path, flow}
clarify: a single clarifying question, only if the question is too ambiguous to answer
Then emit QUERIES_START, one search query per line, then QUERIES_END, then PLAN_END.
Emit nothing outside the PLAN_START/PLAN_END block.`

func buildUserPrompt(question domain.Question, baseQueries []string) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question.Prompt)
	if question.SearchQuery != "" {
		b.WriteString("\nSearch query: ")
		b.WriteString(question.SearchQuery)
	}
	if len(baseQueries) > 0 {
		b.WriteString("\nBase queries: ")
		b.WriteString(strings.Join(baseQueries, "; "))
	}
	return b.String()
}

// Parse extracts plan directives and query hints from raw plan-pass
// output. Unknown preferred_surfaces/must_include_globs values are
// demoted to Hints rather than dropped.
func Parse(raw string) (domain.PlanDirectives, []string) {
	block := between(raw, markerPlanStart, markerPlanEnd)
	if block == "" {
		return domain.PlanDirectives{}, nil
	}

	directivePart := block
	var queryLines []string
	if qStart := strings.Index(block, markerQueriesStart); qStart >= 0 {
		directivePart = block[:qStart]
		queriesBlock := block[qStart+len(markerQueriesStart):]
		if qEnd := strings.Index(queriesBlock, markerQueriesEnd); qEnd >= 0 {
			queriesBlock = queriesBlock[:qEnd]
		}
		queryLines = splitNonEmptyLines(queriesBlock)
	}

	var d domain.PlanDirectives
	scanner := bufio.NewScanner(strings.NewReader(directivePart))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		key, value, ok := splitDirective(line)
		if !ok {
			continue
		}

		switch key {
		case "preferred_surfaces":
			surfaces, hints := classifySurfaces(value)
			d.PreferredSurfaces = append(d.PreferredSurfaces, surfaces...)
			d.Hints = append(d.Hints, hints...)
		case "avoid_surfaces":
			surfaces, _ := classifySurfaces(value)
			d.AvoidSurfaces = append(d.AvoidSurfaces, surfaces...)
		case "must_include_globs":
			globs, hints := classifyGlobs(value)
			d.MustIncludeGlobs = append(d.MustIncludeGlobs, globs...)
			d.Hints = append(d.Hints, hints...)
		case "required_slots":
			d.RequiredSlots = append(d.RequiredSlots, classifySlots(value)...)
		case "clarify":
			d.ClarifyQuestion = value
		}
	}

	return d, dedupStrings(queryLines)
}

func splitDirective(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(line[:idx]))
	value = strings.TrimSpace(line[idx+1:])
	return key, value, true
}

func classifySurfaces(value string) (surfaces []domain.Surface, hints []string) {
	for _, part := range splitCSV(value) {
		s := domain.Surface(strings.ToLower(part))
		if s.Valid() {
			surfaces = append(surfaces, s)
		} else if part != "" {
			hints = append(hints, part)
		}
	}
	return surfaces, hints
}

var pathLikePattern = func() func(string) bool {
	return func(s string) bool {
		return strings.Contains(s, "/") || strings.Contains(s, "*") || strings.Contains(s, ".")
	}
}()

func classifyGlobs(value string) (globs []string, hints []string) {
	for _, part := range splitCSV(value) {
		if part == "" {
			continue
		}
		if pathLikePattern(part) {
			globs = append(globs, part)
		} else {
			hints = append(hints, part)
		}
	}
	return globs, hints
}

func classifySlots(value string) []domain.RequiredSlot {
	var out []domain.RequiredSlot
	for _, part := range splitCSV(value) {
		switch domain.RequiredSlot(strings.ToLower(part)) {
		case domain.SlotDefinition, domain.SlotRepoMapping, domain.SlotVerification,
			domain.SlotFailurePath, domain.SlotFlow:
			out = append(out, domain.RequiredSlot(strings.ToLower(part)))
		}
	}
	return out
}

func splitCSV(value string) []string {
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

func splitNonEmptyLines(s string) []string {
	var out []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	s = s[i+len(start):]
	j := strings.Index(s, end)
	if j < 0 {
		return ""
	}
	return s[:j]
}

// mergeQueries merges query hints with base queries, preserving order and
// deduping, up to limit.
func mergeQueries(base, hints []string, limit int) []string {
	merged := dedupStrings(append(append([]string{}, base...), hints...))
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func dedupStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
