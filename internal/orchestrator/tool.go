package orchestrator

import "context"

// Result is what a Tool step hands back to the orchestrator: free-form
// data plus a short summary that downstream steps can embed via
// appendSummaries.
type Result struct {
	Summary string
	Data    map[string]any
}

// Tool is a single named, versioned capability the orchestrator can wire
// into a plan step. warp-ask, warp-viability, and gr-grounding are all
// Tool implementations registered in a boot-time manifest.
type Tool interface {
	Name() string
	Version() string
	Handle(ctx context.Context, params map[string]any) (Result, error)
}

// Manifest is the boot-time registry of tools a plan can reference by name.
type Manifest map[string]Tool

// NewManifest builds a Manifest from a list of tools, keyed by Name().
func NewManifest(tools ...Tool) Manifest {
	m := make(Manifest, len(tools))
	for _, t := range tools {
		m[t.Name()] = t
	}
	return m
}
