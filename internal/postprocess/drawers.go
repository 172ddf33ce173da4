package postprocess

import (
	"regexp"
	"strings"
)

var (
	detailsBlock     = regexp.MustCompile(`(?is)<details\b[^>]*>.*?</details>\s*`)
	admonitionFence  = regexp.MustCompile(`(?m)^:::[a-zA-Z-]*\s*\n(?:.*\n)*?:::\s*\n?`)
	thinkingTagBlock = regexp.MustCompile(`(?is)<(?:thinking|scratchpad)>.*?</(?:thinking|scratchpad)>\s*`)
)

// StripDrawers removes collapsible drawer sections (<details> blocks,
// ::: admonition fences, <thinking>/<scratchpad> tags) models sometimes
// emit around reasoning scaffolding that doesn't belong in the answer.
func StripDrawers(answer string) string {
	out := detailsBlock.ReplaceAllString(answer, "")
	out = admonitionFence.ReplaceAllString(out, "")
	out = thinkingTagBlock.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
