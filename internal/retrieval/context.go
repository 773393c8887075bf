package retrieval

import (
	"semgraph/internal/graph"
)

// IndirectLink connects a seed to another seed through non-seed files.
type IndirectLink struct {
	Target string   `json:"target"`
	Via    []string `json:"via"`
}

// FileContext is the neighborhood of one seed file.
type FileContext struct {
	Path       string         `json:"path"`
	Important  bool           `json:"important"`
	Imports    []string       `json:"imports"`
	ImportedBy []string       `json:"imported_by"`
	Indirect   []IndirectLink `json:"indirect"`
}

// BuildContexts describes each seed: what it imports, what imports it, and
// how it reaches the other seeds it is not directly connected to.
// Intermediate files are never seeds themselves.
func BuildContexts(g *graph.Graph, seeds []string, important map[string]bool) []FileContext {
	adj := g.Adjacency()

	seedSet := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		seedSet[s] = true
	}
	others := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if !seedSet[n.ID] {
			others[n.ID] = true
		}
	}

	out := make([]FileContext, 0, len(seeds))
	for _, seed := range seeds {
		fc := FileContext{
			Path:       seed,
			Important:  important[seed],
			Imports:    g.GetDependencies(seed),
			ImportedBy: g.GetDependents(seed),
			Indirect:   []IndirectLink{},
		}

		for _, other := range seeds {
			if other == seed || adj[seed][other] {
				continue
			}
			if via := FindIndirectPath(seed, other, adj, others); len(via) > 0 {
				fc.Indirect = append(fc.Indirect, IndirectLink{Target: other, Via: via})
			}
		}
		out = append(out, fc)
	}
	return out
}
