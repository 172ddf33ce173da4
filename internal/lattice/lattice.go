// Package lattice loads a repo-symbol snapshot for the hybrid retriever.
// Building the snapshot (the code-lattice indexer) is out of scope; this
// package only reads one, either from a JSON file on disk or from an
// ArangoDB-backed code graph.
package lattice

import "context"

// Node is one entry of the repo-symbol snapshot.
type Node struct {
	Symbol    string
	FilePath  string
	Signature string
	Doc       string
	Snippet   string
}

// Reader loads the snapshot's nodes; lookups go through a Snapshot built
// from them.
type Reader interface {
	Load(ctx context.Context) ([]Node, error)
}

// Snapshot is a loaded, indexed view of the lattice, built once per Load
// call and reused across a request's retrieval channels.
type Snapshot struct {
	Nodes      []Node
	byFilePath map[string][]Node
}

// NewSnapshot indexes nodes by file path for the path channel.
func NewSnapshot(nodes []Node) *Snapshot {
	byFilePath := make(map[string][]Node, len(nodes))
	for _, n := range nodes {
		byFilePath[n.FilePath] = append(byFilePath[n.FilePath], n)
	}
	return &Snapshot{Nodes: nodes, byFilePath: byFilePath}
}

// ByFilePath returns nodes whose FilePath exactly matches path.
func (s *Snapshot) ByFilePath(path string) []Node {
	return s.byFilePath[path]
}

// Exists reports whether any node resolves at the given path.
func (s *Snapshot) Exists(path string) bool {
	_, ok := s.byFilePath[path]
	return ok
}
