// Package citation runs the citation-repair LLM pass: when an intent
// allows repo citations, the distilled evidence carries file paths, and
// the synthesized answer cites none of them, ask a fixer prompt to splice
// citations in without adding new claims.
package citation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/overflow"
)

const passLabel = "citation_repair"

// citationPattern matches a bare file-path-looking token in answer text.
var citationPattern = regexp.MustCompile(`[a-zA-Z0-9_\-./]+\.[a-zA-Z0-9]+`)

// Repairer fixes an answer missing citations its evidence already has.
type Repairer struct {
	runner *overflow.Runner
}

func New(runner *overflow.Runner) *Repairer {
	return &Repairer{runner: runner}
}

// Input is the repair call's material.
type Input struct {
	Question      domain.Question
	Answer        string
	Evidence      domain.DistilledEvidence
	AllowCitations bool
}

// ShouldFire reports whether citation repair applies: citations are
// allowed, the evidence has at least one citation, and the answer cites
// none of them.
func ShouldFire(in Input) bool {
	if !in.AllowCitations {
		return false
	}
	if len(in.Evidence.Bullets) == 0 {
		return false
	}
	hasEvidenceCitation := false
	for _, b := range in.Evidence.Bullets {
		if b.Citation != "" {
			hasEvidenceCitation = true
			break
		}
	}
	if !hasEvidenceCitation {
		return false
	}
	return !answerHasAnyCitation(in.Answer, in.Evidence)
}

func answerHasAnyCitation(answer string, evidence domain.DistilledEvidence) bool {
	matches := citationPattern.FindAllString(answer, -1)
	if len(matches) == 0 {
		return false
	}
	for _, b := range evidence.Bullets {
		if b.Citation == "" {
			continue
		}
		for _, m := range matches {
			if strings.Contains(b.Citation, m) || strings.Contains(m, b.Citation) {
				return true
			}
		}
	}
	return false
}

// Repair runs the fixer prompt. If the fix comes back non-empty it
// replaces the answer; any failure (LLM error or empty result) leaves the
// original answer untouched.
func (r *Repairer) Repair(ctx context.Context, in Input) (string, overflow.Debug, error) {
	if !ShouldFire(in) {
		return in.Answer, overflow.Debug{}, nil
	}

	systemPrompt, userPrompt := buildPrompt(in)

	resp, debug, err := r.runner.Run(ctx, overflow.Request{
		SystemPrompt:     systemPrompt,
		UserPrompt:       userPrompt,
		MaxTokens:        1400,
		AllowContextDrop: true,
		Label:            passLabel,
	})
	if err != nil {
		return in.Answer, debug, fmt.Errorf("citation repair: %w", err)
	}

	fixed := strings.TrimSpace(extractFixed(resp.Text))
	if fixed == "" {
		return in.Answer, debug, nil
	}
	return fixed, debug, nil
}

func buildPrompt(in Input) (string, string) {
	var sys strings.Builder
	sys.WriteString("You are the citation-repair stage of a retrieval-augmented answering engine.\n")
	sys.WriteString("The answer below is missing citations even though evidence with citations exists.\n")
	sys.WriteString("Introduce no new claims and no new steps. Only insert citations from the evidence list into the existing text.\n")
	sys.WriteString("Emit the corrected answer between FIXED_START and FIXED_END.\n")

	var user strings.Builder
	user.WriteString("Question: ")
	user.WriteString(in.Question.Prompt)
	user.WriteString("\n\nEvidence citations available:\n")
	for _, b := range in.Evidence.Bullets {
		if b.Citation == "" {
			continue
		}
		user.WriteString("- ")
		user.WriteString(b.Citation)
		user.WriteString("\n")
	}
	user.WriteString("\nAnswer:\n")
	user.WriteString(in.Answer)
	user.WriteString("\n\nFIXED_START\n")

	return sys.String(), user.String()
}

func extractFixed(raw string) string {
	const start, end = "FIXED_START", "FIXED_END"
	i := strings.Index(raw, start)
	if i < 0 {
		return raw
	}
	body := raw[i+len(start):]
	j := strings.Index(body, end)
	if j < 0 {
		return body
	}
	return body[:j]
}
