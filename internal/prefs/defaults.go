package prefs

import (
	"semgraph/internal/graph"
	"semgraph/internal/resolver"
)

// InitDefaultHidden seeds a never-saved hidden list with every package
// marker file among nodes. Once the list exists it is returned unchanged.
func InitDefaultHidden(hidden *ListStore, nodes []graph.Node) ([]string, error) {
	if hidden.Exists() {
		return hidden.Load(), nil
	}
	var defaults []string
	for _, n := range nodes {
		if n.Label == resolver.PackageMarker {
			defaults = append(defaults, n.ID)
		}
	}
	if len(defaults) == 0 {
		return []string{}, nil
	}
	if err := hidden.Save(defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}
