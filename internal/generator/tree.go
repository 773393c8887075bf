package generator

import (
	"sort"
	"strings"
)

const noFiles = "No files found."

type treeNode map[string]treeNode

// FormatAsTree renders slash-separated paths as an ASCII tree under a "Root"
// header. Entries are sorted at every level and shared directories are
// merged into one branch.
func FormatAsTree(paths []string) string {
	if len(paths) == 0 {
		return noFiles
	}

	root := treeNode{}
	for _, p := range paths {
		cur := root
		for _, part := range strings.Split(p, "/") {
			next, ok := cur[part]
			if !ok {
				next = treeNode{}
				cur[part] = next
			}
			cur = next
		}
	}

	lines := []string{"Root"}
	var walk func(n treeNode, indent string)
	walk = func(n treeNode, indent string) {
		names := make([]string, 0, len(n))
		for name := range n {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			last := i == len(names)-1
			connector, childIndent := "├── ", "│   "
			if last {
				connector, childIndent = "└── ", "    "
			}
			lines = append(lines, indent+connector+name)
			if len(n[name]) > 0 {
				walk(n[name], indent+childIndent)
			}
		}
	}
	walk(root, "")
	return strings.Join(lines, "\n")
}
