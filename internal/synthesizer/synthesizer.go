// Package synthesizer runs the final answer-synthesis LLM pass over
// distilled evidence, enforcing the format contract (steps/brief/compare)
// and parsing the ANSWER_START/ANSWER_END marker block the answer is
// delimited by.
package synthesizer

import (
	"context"
	"fmt"
	"strings"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/overflow"
)

const passLabel = "answer"

const (
	markerStart = "ANSWER_START"
	markerEnd   = "ANSWER_END"
)

// Synthesizer turns distilled evidence into the final answer text.
type Synthesizer struct {
	runner *overflow.Runner
}

func New(runner *overflow.Runner) *Synthesizer {
	return &Synthesizer{runner: runner}
}

// Input is the synthesis call's material.
type Input struct {
	Question domain.Question
	Evidence domain.DistilledEvidence
	Format   domain.FormatSpec
}

// Synthesize runs the synthesis prompt through the overflow retry runner
// and extracts the marker-delimited answer text. If the markers are
// absent, the raw response is used as a fallback so a malformed but
// otherwise usable completion isn't discarded outright.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (string, overflow.Debug, error) {
	systemPrompt, userPrompt := buildPrompt(in)

	resp, debug, err := s.runner.Run(ctx, overflow.Request{
		SystemPrompt:     systemPrompt,
		UserPrompt:       userPrompt,
		MaxTokens:        1400,
		AllowContextDrop: true,
		Label:            passLabel,
	})
	if err != nil {
		return "", debug, fmt.Errorf("answer synthesis: %w", err)
	}

	return extractAnswer(resp.Text), debug, nil
}

func buildPrompt(in Input) (string, string) {
	var sys strings.Builder
	sys.WriteString("You are the synthesis stage of a retrieval-augmented answering engine.\n")
	sys.WriteString("You may only use claims already present in the evidence bullets below; introduce no new claims.\n")
	sys.WriteString(formatInstructions(in.Format.Format))
	sys.WriteString(fmt.Sprintf("\nDelimit the answer with %s and %s markers; emit nothing outside them.\n", markerStart, markerEnd))

	var user strings.Builder
	user.WriteString("Question: ")
	user.WriteString(in.Question.Prompt)
	user.WriteString("\n\nEvidence:\n")
	for _, b := range in.Evidence.Bullets {
		user.WriteString("- ")
		user.WriteString(b.Text)
		user.WriteString("\n")
	}
	user.WriteString("\n" + markerStart + "\n")

	return sys.String(), user.String()
}

func formatInstructions(format domain.FormatKind) string {
	switch format {
	case domain.FormatSteps:
		return "Write 6 to 9 numbered steps, each 2 to 3 sentences, followed by a trailing \"In practice,\" paragraph.\n"
	case domain.FormatCompare:
		return "Write 1 to 2 short paragraphs, followed by a bullet list contrasting the compared items.\n"
	case domain.FormatBrief:
		return "Write 1 to 2 short paragraphs; no bullet list unless genuinely comparative.\n"
	default:
		return "Write 1 to 2 short paragraphs, with a bullet list only if the content is naturally comparative.\n"
	}
}

// extractAnswer pulls the text between ANSWER_START and ANSWER_END. If
// either marker is missing, the trimmed raw text is returned instead.
func extractAnswer(raw string) string {
	start := strings.Index(raw, markerStart)
	if start < 0 {
		return strings.TrimSpace(raw)
	}
	body := raw[start+len(markerStart):]

	end := strings.Index(body, markerEnd)
	if end < 0 {
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(body[:end])
}
