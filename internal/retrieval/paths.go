package retrieval

import "sort"

// FindIndirectPath searches breadth-first from start for end, stepping only
// through nodes in excluded. It returns the intermediate nodes of the first
// path found, which is empty when start and end are equal, adjacent, or
// unconnected. Neighbors are visited in sorted order.
func FindIndirectPath(start, end string, adjacency map[string]map[string]bool, excluded map[string]bool) []string {
	if start == end {
		return []string{}
	}

	visited := map[string]bool{start: true}
	queue := []pathItem{{id: start}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, neighbor := range sortedKeys(adjacency[cur.id]) {
			if neighbor == end {
				return cur.path
			}
			if visited[neighbor] || !excluded[neighbor] {
				continue
			}
			visited[neighbor] = true
			next := make([]string, len(cur.path), len(cur.path)+1)
			copy(next, cur.path)
			queue = append(queue, pathItem{id: neighbor, path: append(next, neighbor)})
		}
	}
	return []string{}
}

type pathItem struct {
	id   string
	path []string
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
