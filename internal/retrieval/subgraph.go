package retrieval

import (
	"sort"

	"semgraph/internal/graph"
)

// Config controls how neighborhoods are extracted.
type Config struct {
	MaxHops int
}

func DefaultConfig() Config {
	return Config{MaxHops: 2}
}

// Subgraph is the part of a graph within MaxHops of the seeds, following
// edges in both directions.
type Subgraph struct {
	MaxHops int            `json:"max_hops"`
	SeedIDs []string       `json:"seed_ids"`
	NodeIDs []string       `json:"node_ids"`
	Depth   map[string]int `json:"depth"`
	Edges   []graph.Edge   `json:"edges"`
}

// ExtractNeighborhood collects nodes reachable from seeds within cfg.MaxHops
// and every edge between collected nodes. Unknown seeds are ignored.
func ExtractNeighborhood(g *graph.Graph, seeds []string, cfg Config) *Subgraph {
	if cfg.MaxHops < 0 {
		cfg.MaxHops = 0
	}

	depth := make(map[string]int)
	queue := make([]queueItem, 0, len(seeds))
	for _, id := range seeds {
		if !g.HasNode(id) {
			continue
		}
		if _, ok := depth[id]; ok {
			continue
		}
		depth[id] = 0
		queue = append(queue, queueItem{id: id})
	}
	seedIDs := sortedKeys(depth)

	adj := g.Adjacency()
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= cfg.MaxHops {
			continue
		}
		for _, next := range sortedKeys(adj[cur.id]) {
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = cur.depth + 1
			queue = append(queue, queueItem{id: next, depth: cur.depth + 1})
		}
	}

	edges := make([]graph.Edge, 0)
	for _, e := range g.Edges {
		_, okS := depth[e.Source]
		_, okT := depth[e.Target]
		if okS && okT {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source == edges[j].Source {
			return edges[i].Target < edges[j].Target
		}
		return edges[i].Source < edges[j].Source
	})

	return &Subgraph{
		MaxHops: cfg.MaxHops,
		SeedIDs: seedIDs,
		NodeIDs: sortedKeys(depth),
		Depth:   depth,
		Edges:   edges,
	}
}

// Graph materializes the subgraph with node metadata taken from g.
func (s *Subgraph) Graph(g *graph.Graph) *graph.Graph {
	keep := make(map[string]bool, len(s.NodeIDs))
	for _, id := range s.NodeIDs {
		keep[id] = true
	}
	return g.Filter(func(n graph.Node) bool { return keep[n.ID] })
}

type queueItem struct {
	id    string
	depth int
}
