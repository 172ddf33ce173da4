// Package domain holds the tagged-variant types shared across the Ask
// pipeline: the question, intent/topic profiles, retrieval candidates,
// evidence packs, the answer envelope, and the closed enums that back them.
package domain

import "time"

// Question is the raw user question plus optional attached context.
// Immutable once constructed.
type Question struct {
	Prompt       string
	Context      string
	SearchQuery  string
	TopK         int
	MaxTokens    int
	Temperature  *float64
	Seed         *int64
	Stop         []string
	Debug        bool
	DryRun       bool
	Verbosity    string
	PersonaID    string
	SessionID    string
	TraceID      string
	ReceivedAt   time.Time
}

// Text returns the prompt, falling back to nothing if empty. Most callers
// want the combination of prompt and search query for tokenization.
func (q Question) Text() string {
	return q.Prompt
}

// HasRepoHints reports whether the question text carries vocabulary that
// typically implies the answer must be grounded in repository evidence
// (endpoint paths, file extensions, symbol-looking tokens).
func (q Question) HasRepoHints() bool {
	return hasRepoHintPattern(q.Prompt) || hasRepoHintPattern(q.Context)
}

// HasFilePathHints reports whether the question text contains something
// that resolves to a plausible repo-relative file path.
func (q Question) HasFilePathHints() bool {
	return extractPathHints(q.Prompt) != nil
}
