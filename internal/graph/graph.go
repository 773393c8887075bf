package graph

import (
	"path"
	"sort"
)

// Node is one analyzable source file.
type Node struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Directory string `json:"directory"`
	Extension string `json:"extension"`
	Type      string `json:"type"`
}

// Edge records that Source imports Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the file dependency graph of one build. Edges only ever connect
// nodes already present, never loop on a single node, and are unique.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	index map[string]int
	seen  map[Edge]bool
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: []Node{},
		Edges: []Edge{},
		index: make(map[string]int),
		seen:  make(map[Edge]bool),
	}
}

// NewNode derives a node from a root-relative slash-separated path.
func NewNode(id, fileType string) Node {
	dir := path.Dir(id)
	if dir == "." {
		dir = ""
	}
	return Node{
		ID:        id,
		Label:     path.Base(id),
		Directory: dir,
		Extension: path.Ext(id),
		Type:      fileType,
	}
}

// AddNode inserts n unless a node with the same ID exists.
func (g *Graph) AddNode(n Node) bool {
	if _, ok := g.index[n.ID]; ok {
		return false
	}
	g.index[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	return true
}

// AddEdge inserts source -> target when both nodes exist, they differ, and
// the edge is new.
func (g *Graph) AddEdge(source, target string) bool {
	if source == target || !g.HasNode(source) || !g.HasNode(target) {
		return false
	}
	e := Edge{Source: source, Target: target}
	if g.seen[e] {
		return false
	}
	g.seen[e] = true
	g.Edges = append(g.Edges, e)
	return true
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// GetDependencies returns the IDs id imports, sorted.
func (g *Graph) GetDependencies(id string) []string {
	var deps []string
	for _, edge := range g.Edges {
		if edge.Source == id {
			deps = append(deps, edge.Target)
		}
	}
	sort.Strings(deps)
	return deps
}

// GetDependents returns the IDs importing id, sorted.
func (g *Graph) GetDependents(id string) []string {
	var deps []string
	for _, edge := range g.Edges {
		if edge.Target == id {
			deps = append(deps, edge.Source)
		}
	}
	sort.Strings(deps)
	return deps
}

// Adjacency returns the undirected neighbor sets of every node.
func (g *Graph) Adjacency() map[string]map[string]bool {
	adj := make(map[string]map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		adj[n.ID] = make(map[string]bool)
	}
	for _, e := range g.Edges {
		adj[e.Source][e.Target] = true
		adj[e.Target][e.Source] = true
	}
	return adj
}

// Filter returns a new graph holding the nodes keep accepts and the edges
// between them.
func (g *Graph) Filter(keep func(Node) bool) *Graph {
	out := NewGraph()
	for _, n := range g.Nodes {
		if keep(n) {
			out.AddNode(n)
		}
	}
	for _, e := range g.Edges {
		out.AddEdge(e.Source, e.Target)
	}
	return out
}
