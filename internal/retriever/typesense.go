package retriever

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/lattice"
)

// TypesenseChannel is an alternate lexical channel backed by a Typesense
// collection mirroring the lattice snapshot, used when a deployment opts
// into a dedicated search index instead of the in-process scan channels.
type TypesenseChannel struct {
	client     *typesense.Client
	collection string
}

// NewTypesenseChannel dials a Typesense server and targets the given
// collection (expected to carry file_path, symbol and snippet fields
// mirroring the lattice snapshot).
func NewTypesenseChannel(serverURL, apiKey, collection string) *TypesenseChannel {
	client := typesense.NewClient(
		typesense.WithServer(serverURL),
		typesense.WithAPIKey(apiKey),
	)
	return &TypesenseChannel{client: client, collection: collection}
}

func (t *TypesenseChannel) Name() domain.Channel {
	return domain.ChannelLexical
}

// Search queries the Typesense collection and maps hits back onto nodes
// present in the current universe so fusion can apply tier/universe
// restrictions consistently across channels.
func (t *TypesenseChannel) Search(ctx context.Context, query string, universe []lattice.Node) ([]scored, error) {
	byPath := make(map[string]lattice.Node, len(universe))
	for _, n := range universe {
		byPath[n.FilePath] = n
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("file_path,symbol,snippet"),
		PerPage: pointer.Int(25),
	}

	result, err := t.client.Collection(t.collection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("typesense search: %w", err)
	}
	if result.Hits == nil {
		return nil, nil
	}

	out := make([]scored, 0, len(*result.Hits))
	for rank, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document
		path, _ := doc["file_path"].(string)
		if path == "" {
			continue
		}
		if _, inUniverse := byPath[path]; !inUniverse {
			continue
		}
		out = append(out, scored{
			FilePath: path,
			Preview:  preview(byPath[path]),
			RRFScore: 1.0 / float64(rank+1),
		})
	}
	return out, nil
}
