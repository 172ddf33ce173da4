// Package distiller runs the evidence-distillation LLM pass: it asks for
// 4-9 short bullets, each citing a file path or chunk id found in the
// retrieved context, and parses the result into structured bullets.
package distiller

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/overflow"
)

const passLabel = "repo_evidence"

var uiPathPattern = regexp.MustCompile(`(?i)(/ui/|/components/|\.tsx$|\.jsx$|\.css$|/frontend/)`)

var bulletLinePattern = regexp.MustCompile(`^\s*(?:[-*]|\d+[.)])\s*(.+)$`)

// Distiller produces the evidence bullets the synthesizer builds its
// answer from.
type Distiller struct {
	runner *overflow.Runner
}

func New(runner *overflow.Runner) *Distiller {
	return &Distiller{runner: runner}
}

// Input is the distillation call's material.
type Input struct {
	Question domain.Question
	Evidence domain.EvidencePack
	Format   domain.FormatSpec
	NonUI    bool
}

// Distill runs the evidence prompt through the overflow retry runner and
// parses its bullets, dropping any whose citation doesn't resolve against
// the Evidence Pack's known files.
func (d *Distiller) Distill(ctx context.Context, in Input) (domain.DistilledEvidence, overflow.Debug, error) {
	systemPrompt, userPrompt := buildPrompt(in)

	resp, debug, err := d.runner.Run(ctx, overflow.Request{
		SystemPrompt:     systemPrompt,
		UserPrompt:       userPrompt,
		MaxTokens:        900,
		AllowContextDrop: true,
		Label:            passLabel,
	})
	if err != nil {
		return domain.DistilledEvidence{}, debug, fmt.Errorf("evidence distillation: %w", err)
	}

	knownFiles := make(map[string]struct{}, len(in.Evidence.Files))
	for _, f := range in.Evidence.Files {
		knownFiles[f] = struct{}{}
	}

	bullets := parseBullets(resp.Text, knownFiles)
	return domain.DistilledEvidence{Bullets: bullets, Raw: resp.Text}, debug, nil
}

func buildPrompt(in Input) (string, string) {
	var sys strings.Builder
	sys.WriteString("You are the evidence-distillation stage of a retrieval-augmented answering engine.\n")
	sys.WriteString("Emit 4 to 9 short bullets, each citing a file path or chunk id found in the context below.\n")
	sys.WriteString("No preamble, no conclusion, just the bullets.\n")
	if in.Format.StageTags {
		sys.WriteString("Prefix each bullet with a short stage tag in brackets, e.g. [definition], [mapping].\n")
	}
	if in.NonUI {
		sys.WriteString("Exclude UI/frontend file paths; cite backend, docs, or data paths only.\n")
	}

	var user strings.Builder
	user.WriteString("Question: ")
	user.WriteString(in.Question.Prompt)
	user.WriteString("\n\nContext:\n")
	user.WriteString(in.Evidence.ContextText())
	user.WriteString("\nANSWER_START\n")

	return sys.String(), user.String()
}

// parseBullets extracts one bullet per list-marked line and resolves its
// citation against the known evidence files (the bullet text must contain
// a file's full path or its base name), dropping bullets whose citation
// doesn't resolve.
func parseBullets(raw string, knownFiles map[string]struct{}) []domain.EvidenceBullet {
	var bullets []domain.EvidenceBullet
	for _, line := range strings.Split(raw, "\n") {
		m := bulletLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[1])
		if text == "" {
			continue
		}

		citation, ok := resolveCitation(text, knownFiles)
		if !ok {
			continue
		}
		bullets = append(bullets, domain.EvidenceBullet{Text: text, Citation: citation})
	}
	return bullets
}

func resolveCitation(text string, knownFiles map[string]struct{}) (string, bool) {
	for f := range knownFiles {
		if strings.Contains(text, f) {
			return f, true
		}
		base := f
		if idx := strings.LastIndex(f, "/"); idx >= 0 {
			base = f[idx+1:]
		}
		if base != "" && strings.Contains(text, base) {
			return f, true
		}
	}
	return "", false
}

// IsNonUIQuestion reports whether the question text carries no UI/frontend
// vocabulary, used to decide whether to exclude UI paths from evidence.
func IsNonUIQuestion(text string) bool {
	return !uiPathPattern.MatchString(text)
}
