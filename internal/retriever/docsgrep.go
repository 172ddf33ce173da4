package retriever

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"basegraph.app/helixask/internal/normalize"
)

// DocsGrepFallback scans a fixed set of documentation directories for
// question tokens and short phrases when a docs-first scope's allowlist
// yields nothing and repo evidence is still required.
type DocsGrepFallback struct {
	roots []string
}

// NewDocsGrepFallback builds a fallback scanning the given directories,
// typically docs/, docs/knowledge/ and docs/ethos/.
func NewDocsGrepFallback(roots []string) *DocsGrepFallback {
	return &DocsGrepFallback{roots: roots}
}

// Search walks the configured roots, scoring each markdown file by the
// number of query tokens and phrases it contains.
func (f *DocsGrepFallback) Search(ctx context.Context, queries []string) ([]scored, error) {
	tokens := map[string]struct{}{}
	for _, q := range queries {
		for _, t := range normalize.ContentTokens(q) {
			tokens[t] = struct{}{}
		}
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	var results []scored
	for _, root := range f.roots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(path, ".md") {
				return nil
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return nil
			}

			lower := strings.ToLower(string(data))
			hits := 0
			for t := range tokens {
				hits += strings.Count(lower, t)
			}
			if hits == 0 {
				return nil
			}

			results = append(results, scored{
				FilePath: path,
				Preview:  preview2000(string(data)),
				RRFScore: float64(hits),
			})
			return nil
		})
		if err != nil && err != ctx.Err() {
			continue
		}
	}

	return results, nil
}

func preview2000(s string) string {
	if len(s) <= 2000 {
		return s
	}
	return s[:2000]
}
