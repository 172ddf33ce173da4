package postprocess

import (
	"regexp"
	"strings"
)

var (
	trailingLineSpace = regexp.MustCompile(`[ \t]+\n`)
	excessBlankLines  = regexp.MustCompile(`\n{3,}`)
)

// EnforceParagraphContract trims trailing whitespace from each line and
// collapses three or more consecutive newlines down to a single blank
// line, so paragraphs are separated consistently regardless of how many
// blank lines the model produced.
func EnforceParagraphContract(answer string) string {
	out := trailingLineSpace.ReplaceAllString(answer, "\n")
	out = excessBlankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
