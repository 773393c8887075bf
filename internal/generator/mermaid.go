package generator

import (
	"fmt"
	"strings"

	"semgraph/internal/graph"
)

// MermaidGenerator renders dependency graphs as mermaid flowcharts.
type MermaidGenerator struct {
	// Direction is a mermaid flow direction such as LR or TD.
	Direction string
}

// Generate emits one box per file, grouped by directory, and one arrow per
// import. Important files get a highlight class.
func (m *MermaidGenerator) Generate(g *graph.Graph, important map[string]bool) string {
	dir := m.Direction
	if dir == "" {
		dir = "LR"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "graph %s\n", dir)

	ids := make(map[string]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[n.ID] = fmt.Sprintf("n%d", i)
	}

	var order []string
	byDir := make(map[string][]graph.Node)
	for _, n := range g.Nodes {
		if _, ok := byDir[n.Directory]; !ok {
			order = append(order, n.Directory)
		}
		byDir[n.Directory] = append(byDir[n.Directory], n)
	}

	for i, d := range order {
		indent := "    "
		if d != "" {
			fmt.Fprintf(&sb, "    subgraph d%d[\"%s\"]\n", i, escapeLabel(d))
			indent = "        "
		}
		for _, n := range byDir[d] {
			fmt.Fprintf(&sb, "%s%s[\"%s\"]\n", indent, ids[n.ID], escapeLabel(n.Label))
		}
		if d != "" {
			sb.WriteString("    end\n")
		}
	}

	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", ids[e.Source], ids[e.Target])
	}

	var marked []string
	for _, n := range g.Nodes {
		if important[n.ID] {
			marked = append(marked, ids[n.ID])
		}
	}
	if len(marked) > 0 {
		sb.WriteString("    classDef important fill:#ffe08a,stroke:#b8860b\n")
		fmt.Fprintf(&sb, "    class %s important\n", strings.Join(marked, ","))
	}
	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
