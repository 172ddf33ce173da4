// Package normalize cleans prompts and tokenizes queries for the retriever
// and gate stack, and detects file/endpoint/path hints in raw question text.
package normalize

import (
	"regexp"
	"strings"
)

var (
	wordPattern      = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9_]{1,}`)
	pathPattern      = regexp.MustCompile(`(?:[a-zA-Z0-9_.\-]+/)+[a-zA-Z0-9_.\-]+\.[a-zA-Z0-9]+`)
	endpointPattern  = regexp.MustCompile(`(?:GET|POST|PUT|DELETE|PATCH)?\s*(/[a-zA-Z0-9_\-./:]+)`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	stopwords = map[string]struct{}{
		"the": {}, "a": {}, "an": {}, "is": {}, "of": {}, "to": {}, "and": {},
		"in": {}, "for": {}, "on": {}, "with": {}, "this": {}, "that": {},
		"does": {}, "do": {}, "it": {}, "what": {}, "how": {}, "which": {},
		"are": {}, "was": {}, "be": {},
	}
)

// Clean collapses whitespace and trims a prompt for downstream use.
func Clean(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// Tokenize lowercases and splits a query into word tokens, dropping very
// short fragments. Order is preserved; duplicates are kept (callers that
// need a set should dedup separately).
func Tokenize(s string) []string {
	matches := wordPattern.FindAllString(strings.ToLower(s), -1)
	return matches
}

// ContentTokens tokenizes and filters out closed-class stopwords, leaving
// only tokens that carry retrieval signal. Used by the ambiguity resolver's
// short-question check.
func ContentTokens(s string) []string {
	tokens := Tokenize(s)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// TokenSet returns the deduplicated token set of a string's content tokens.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range ContentTokens(s) {
		set[tok] = struct{}{}
	}
	return set
}

// DetectFilePathHints extracts substrings that look like repo-relative file
// paths (at least one directory segment plus an extension).
func DetectFilePathHints(s string) []string {
	matches := pathPattern.FindAllString(s, -1)
	return dedup(matches)
}

// DetectEndpointHints extracts substrings that look like HTTP routes.
func DetectEndpointHints(s string) []string {
	matches := endpointPattern.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 && m[1] != "" {
			out = append(out, m[1])
		}
	}
	return dedup(out)
}

func dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// TrigramJaccard computes trigram-Jaccard similarity between two strings,
// used by the retriever's fuzzy channel.
func TrigramJaccard(a, b string) float64 {
	ta, tb := trigrams(strings.ToLower(a)), trigrams(strings.ToLower(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			intersection++
		}
	}

	union := len(ta) + len(tb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func trigrams(s string) map[string]struct{} {
	padded := "  " + s + "  "
	out := make(map[string]struct{})
	for i := 0; i+3 <= len(padded); i++ {
		out[padded[i:i+3]] = struct{}{}
	}
	return out
}
