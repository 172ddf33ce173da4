// Package postprocess runs the answer through a fixed pipeline of pure
// string transforms after synthesis and gating: strip an echoed prompt,
// strip drawer sections, normalize list markers, repair file path
// formatting, and enforce the paragraph-spacing contract. Each stage is
// idempotent on its own, which makes the composed pipeline idempotent.
package postprocess

import "strings"

// Stage is one pure transform in the post-processing pipeline.
type Stage func(string) string

// Pipeline returns the ordered stage list the Process entrypoint runs.
func Pipeline() []Stage {
	return []Stage{
		StripPromptEcho,
		StripDrawers,
		NormalizeLists,
		RepairFilePaths,
		EnforceParagraphContract,
	}
}

// Process runs answer through every stage in order.
func Process(answer string) string {
	out := answer
	for _, stage := range Pipeline() {
		out = stage(out)
	}
	return out
}

// ProcessWithPrompt is Process plus StripPromptEcho's need for the
// original question text, run before the rest of the pipeline.
func ProcessWithPrompt(answer, question string) string {
	out := StripPromptEchoOf(answer, question)
	out = StripDrawers(out)
	out = NormalizeLists(out)
	out = RepairFilePaths(out)
	out = EnforceParagraphContract(out)
	return out
}

// StripPromptEcho removes a leading "Question:"/"Q:" echo line some models
// prepend before the real answer. Idempotent: a second pass finds no such
// line once the first has removed it.
func StripPromptEcho(answer string) string {
	lines := strings.Split(answer, "\n")
	start := 0
	for start < len(lines) {
		trimmed := strings.TrimSpace(lines[start])
		if trimmed == "" {
			start++
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.HasPrefix(lower, "question:") || strings.HasPrefix(lower, "q:") {
			start++
			continue
		}
		break
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n"))
}

// StripPromptEchoOf additionally drops a leading line that is a verbatim
// (case-insensitive) echo of the question text itself.
func StripPromptEchoOf(answer, question string) string {
	stripped := StripPromptEcho(answer)
	lines := strings.SplitN(stripped, "\n", 2)
	if len(lines) == 0 {
		return stripped
	}
	firstLine := strings.TrimSpace(lines[0])
	if question != "" && strings.EqualFold(firstLine, strings.TrimSpace(question)) {
		if len(lines) == 2 {
			return strings.TrimSpace(lines[1])
		}
		return ""
	}
	return stripped
}
