package lattice

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileReader loads a repo-symbol snapshot serialized as a JSON array of
// nodes from disk. This is the default reader for deployments that don't
// run an ArangoDB-backed code graph.
type FileReader struct {
	Path string
}

func NewFileReader(path string) *FileReader {
	return &FileReader{Path: path}
}

func (r *FileReader) Load(ctx context.Context) ([]Node, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("read lattice snapshot %s: %w", r.Path, err)
	}

	var nodes []Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("parse lattice snapshot %s: %w", r.Path, err)
	}

	return nodes, nil
}
