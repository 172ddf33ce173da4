package postprocess

import "regexp"

var (
	bareFilePath     = regexp.MustCompile(`(?:^|[\s(])((?:[a-zA-Z0-9_.\-]+/)+[a-zA-Z0-9_.\-]+\.[a-zA-Z0-9]+)`)
	alreadyBackticked = regexp.MustCompile("`[^`]*`")
	doubleSlash       = regexp.MustCompile(`([a-zA-Z0-9_\-])//+`)
	trailingPunctInPath = regexp.MustCompile("`([^`]+?)([.,;:!?]+)`")
)

// RepairFilePaths wraps bare file-path-looking tokens in backticks,
// collapses accidental doubled path separators, and moves trailing
// sentence punctuation that ended up inside a path's backticks back
// outside them.
func RepairFilePaths(answer string) string {
	backtickedSpans := alreadyBackticked.FindAllStringIndex(answer, -1)

	out := replaceOutsideSpans(answer, backtickedSpans, bareFilePath, func(match string) string {
		prefix := ""
		path := match
		if len(match) > 0 && (match[0] == ' ' || match[0] == '(' || match[0] == '\t') {
			prefix = string(match[0])
			path = match[1:]
		}
		return prefix + "`" + path + "`"
	})

	out = doubleSlash.ReplaceAllString(out, "$1/")
	out = trailingPunctInPath.ReplaceAllString(out, "`$1`$2")
	return out
}

// replaceOutsideSpans applies re.ReplaceAllStringFunc only to the portions
// of s that fall outside the given [start,end) spans (already-backticked
// text), leaving spans untouched so a path inside an existing code span
// isn't double-wrapped.
func replaceOutsideSpans(s string, spans [][]int, re *regexp.Regexp, repl func(string) string) string {
	if len(spans) == 0 {
		return re.ReplaceAllStringFunc(s, repl)
	}

	var b []byte
	last := 0
	for _, span := range spans {
		b = append(b, re.ReplaceAllStringFunc(s[last:span[0]], repl)...)
		b = append(b, s[span[0]:span[1]]...)
		last = span[1]
	}
	b = append(b, re.ReplaceAllStringFunc(s[last:], repl)...)
	return string(b)
}
