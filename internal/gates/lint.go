package gates

import (
	"regexp"
	"strings"
)

var (
	junkScaffolding = regexp.MustCompile(`(?im)^\s*(as an ai( language model)?|let me think( step by step)?|i'll now|sure|here(?:'s| is) (?:the|my) answer)[,:!]?\s*`)
	drawerBlock     = regexp.MustCompile(`(?is)<details>.*?</details>\s*`)
	admonitionBlock = regexp.MustCompile(`(?m)^:::.*$\n?`)
	leadingPath     = regexp.MustCompile(`^(` + repoMappingPath.String() + `)\b`)

	physicsCanonical = map[string]string{
		"warp ask":       "warp-ask",
		"warpask":        "warp-ask",
		"warp viability": "warp-viability",
		"warpviability":  "warp-viability",
		"gr grounding":   "gr-grounding",
		"grgrounding":    "gr-grounding",
	}
)

// Lint strips junk LLM scaffolding, cosmetic drawer/admonition blocks,
// rewrites prose that starts directly with a bare file path, and
// canonicalizes the three physics tool names the orchestrator injects.
// Reasons describe what was changed, for the gate report's debug trail.
func Lint(r *Report, answer string) (cleaned string, reasons []string) {
	cleaned = answer

	if junkScaffolding.MatchString(cleaned) {
		cleaned = junkScaffolding.ReplaceAllString(cleaned, "")
		reasons = append(reasons, "stripped junk scaffolding")
	}
	if drawerBlock.MatchString(cleaned) {
		cleaned = drawerBlock.ReplaceAllString(cleaned, "")
		reasons = append(reasons, "stripped cosmetic drawer block")
	}
	if admonitionBlock.MatchString(cleaned) {
		cleaned = admonitionBlock.ReplaceAllString(cleaned, "")
		reasons = append(reasons, "stripped admonition block")
	}

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		if m := leadingPath.FindStringSubmatch(line); m != nil {
			lines[i] = "The file `" + m[1] + "`" + line[len(m[1]):]
			reasons = append(reasons, "rewrote prose starting with a bare file path")
		}
	}
	cleaned = strings.Join(lines, "\n")

	lowerCleaned := strings.ToLower(cleaned)
	for wrong, right := range physicsCanonical {
		if strings.Contains(lowerCleaned, wrong) {
			cleaned = replaceCaseInsensitive(cleaned, wrong, right)
			lowerCleaned = strings.ToLower(cleaned)
			reasons = append(reasons, "canonicalized physics term to "+right)
		}
	}

	cleaned = strings.TrimSpace(cleaned)

	metrics := map[string]float64{"reasons": float64(len(reasons))}
	if len(reasons) == 0 {
		r.pass("concept_physics_lint", metrics)
	} else {
		r.record(Verdict{Gate: "concept_physics_lint", Passed: true, Reason: strings.Join(reasons, "; "), Metrics: metrics})
	}

	return cleaned, reasons
}

func replaceCaseInsensitive(s, old, replacement string) string {
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(old))
	return re.ReplaceAllString(s, replacement)
}
