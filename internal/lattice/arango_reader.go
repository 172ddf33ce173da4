package lattice

import (
	"context"
	"fmt"

	"basegraph.app/helixask/common/arangodb"
)

// ArangoReader loads the snapshot from a running code graph instead of a
// static JSON file, using arangodb.Client's search path (SearchSymbols
// with a wildcard name pattern). It does not carry the
// symbol's doc comment or source snippet, since the graph's SearchResult
// projection doesn't return them — callers that need those fall back to
// reading the file at FilePath.
type ArangoReader struct {
	client arangodb.Client
}

func NewArangoReader(client arangodb.Client) *ArangoReader {
	return &ArangoReader{client: client}
}

func (r *ArangoReader) Load(ctx context.Context) ([]Node, error) {
	results, _, err := r.client.SearchSymbols(ctx, arangodb.SearchOptions{Name: "*"})
	if err != nil {
		return nil, fmt.Errorf("search symbols for lattice snapshot: %w", err)
	}

	nodes := make([]Node, 0, len(results))
	for _, res := range results {
		nodes = append(nodes, Node{
			Symbol:    res.Name,
			FilePath:  res.Filepath,
			Signature: res.Signature,
		})
	}

	return nodes, nil
}
