package domain

import "regexp"

var (
	repoHintPattern = regexp.MustCompile(`(?i)\b(file|route|endpoint|function|class|struct|method|package|repo|codebase|symbol|implementation)\b|\.(ts|tsx|js|jsx|go|py|rb|java|md)\b|/[a-zA-Z0-9_.\-]+/[a-zA-Z0-9_.\-]+`)
	pathHintPattern = regexp.MustCompile(`(?:[a-zA-Z0-9_.\-]+/)+[a-zA-Z0-9_.\-]+\.[a-zA-Z0-9]+`)
)

func hasRepoHintPattern(s string) bool {
	return repoHintPattern.MatchString(s)
}

func extractPathHints(s string) []string {
	matches := pathHintPattern.FindAllString(s, -1)
	if len(matches) == 0 {
		return nil
	}
	return matches
}
