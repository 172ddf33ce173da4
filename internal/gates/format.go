package gates

import (
	"regexp"
	"strings"

	"basegraph.app/helixask/internal/domain"
)

var (
	numberedLine    = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	inPracticeLead  = regexp.MustCompile(`(?i)^in practice,`)
	twoParagraphAsk = regexp.MustCompile(`(?i)\btwo short paragraphs\b`)
)

// FormatEnforce checks the answer against its format contract and applies
// mechanical, non-content-altering fixes: collapsing stray numbered steps
// into bullets outside the steps format, and merging paragraphs beyond the
// second when the question explicitly asked for two short paragraphs.
// Structural violations that can't be fixed without inventing content
// (missing numbered steps, missing trailing paragraph) are annotated only.
func FormatEnforce(r *Report, questionText string, spec domain.FormatSpec, answer string) (string, bool) {
	fixed := answer
	var reasons []string
	passed := true

	switch spec.Format {
	case domain.FormatSteps:
		if !numberedLine.MatchString(fixed) {
			passed = false
			reasons = append(reasons, "steps format requires a numbered list")
		}
		if !hasTrailingInPractice(fixed) {
			passed = false
			reasons = append(reasons, "steps format requires a trailing \"In practice,\" paragraph")
		}
	case domain.FormatCompare, domain.FormatBrief:
		if numberedLine.MatchString(fixed) && !mentionsSteps(questionText) {
			fixed = numberedToBullets(fixed)
			reasons = append(reasons, "collapsed numbered steps into bullets outside steps format")
		}
	}

	if twoParagraphAsk.MatchString(questionText) {
		paragraphs := splitParagraphs(fixed)
		if len(paragraphs) > 2 {
			fixed = paragraphs[0] + "\n\n" + strings.Join(paragraphs[1:], " ")
			reasons = append(reasons, "merged extra paragraphs to satisfy a two-paragraph request")
		}
	}

	metrics := map[string]float64{"fixes": float64(len(reasons))}
	if passed {
		if len(reasons) == 0 {
			r.pass("format", metrics)
		} else {
			r.record(Verdict{Gate: "format", Passed: true, Reason: strings.Join(reasons, "; "), Metrics: metrics})
		}
	} else {
		r.fail("format", strings.Join(reasons, "; "), metrics)
	}

	return fixed, passed
}

func hasTrailingInPractice(answer string) bool {
	paragraphs := splitParagraphs(answer)
	if len(paragraphs) == 0 {
		return false
	}
	return inPracticeLead.MatchString(strings.TrimSpace(paragraphs[len(paragraphs)-1]))
}

func mentionsSteps(questionText string) bool {
	lower := strings.ToLower(questionText)
	return strings.Contains(lower, "step") || strings.Contains(lower, "numbered")
}

func numberedToBullets(s string) string {
	return numberedLine.ReplaceAllString(s, "- ")
}

func splitParagraphs(s string) []string {
	raw := regexp.MustCompile(`\n\s*\n`).Split(strings.TrimSpace(s), -1)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
