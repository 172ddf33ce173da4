package arangodb

// SearchOptions configures symbol search parameters.
type SearchOptions struct {
	Name      string // Glob pattern: "Plan*", "*Issue*"
	Kind      string // Filter by kind: function, method, struct, interface
	File      string // Filter by filepath
	Namespace string // Filter by module path
}

// SearchResult represents a symbol found by search.
type SearchResult struct {
	QName     string
	Name      string
	Kind      string
	Signature string
	Filepath  string
	Pos       int
}
