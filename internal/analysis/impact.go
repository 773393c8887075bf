package analysis

import (
	"sort"

	"semgraph/internal/graph"
)

// ImpactReport lists the files affected by changes to a set of files.
type ImpactReport struct {
	Changed []string `json:"changed"`
	// Direct files import a changed file.
	Direct []string `json:"direct"`
	// Indirect files reach a changed file only through other importers.
	Indirect []string `json:"indirect"`
}

// Impact walks importers outward from the changed files. Paths that are not
// graph nodes are ignored.
func Impact(g *graph.Graph, changed []string) *ImpactReport {
	report := &ImpactReport{Changed: []string{}, Direct: []string{}, Indirect: []string{}}

	importers := make(map[string][]string)
	for _, e := range g.Edges {
		importers[e.Target] = append(importers[e.Target], e.Source)
	}

	depth := make(map[string]int)
	var queue []string
	for _, id := range changed {
		if !g.HasNode(id) {
			continue
		}
		if _, ok := depth[id]; ok {
			continue
		}
		depth[id] = 0
		queue = append(queue, id)
		report.Changed = append(report.Changed, id)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, src := range importers[cur] {
			if _, ok := depth[src]; ok {
				continue
			}
			depth[src] = depth[cur] + 1
			queue = append(queue, src)
			if depth[src] == 1 {
				report.Direct = append(report.Direct, src)
			} else {
				report.Indirect = append(report.Indirect, src)
			}
		}
	}

	sort.Strings(report.Changed)
	sort.Strings(report.Direct)
	sort.Strings(report.Indirect)
	return report
}
