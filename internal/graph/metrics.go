package graph

import "sort"

// Summary describes the size and shape of a graph.
type Summary struct {
	Nodes    int            `json:"nodes"`
	Edges    int            `json:"edges"`
	ByType   map[string]int `json:"by_type"`
	Isolated int            `json:"isolated"`
	// MostImported lists up to five IDs by descending importer count.
	MostImported []string `json:"most_imported"`
}

// Summarize counts nodes per type, isolated nodes and the most imported files.
func (g *Graph) Summarize() Summary {
	s := Summary{
		Nodes:  len(g.Nodes),
		Edges:  len(g.Edges),
		ByType: make(map[string]int),
	}
	in := make(map[string]int)
	touched := make(map[string]bool)
	for _, e := range g.Edges {
		in[e.Target]++
		touched[e.Source] = true
		touched[e.Target] = true
	}
	for _, n := range g.Nodes {
		s.ByType[n.Type]++
		if !touched[n.ID] {
			s.Isolated++
		}
	}

	ids := make([]string, 0, len(in))
	for id := range in {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if in[ids[i]] != in[ids[j]] {
			return in[ids[i]] > in[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > 5 {
		ids = ids[:5]
	}
	s.MostImported = ids
	return s
}
