package generator

import (
	"fmt"
	"strings"

	"semgraph/internal/extractor"
	"semgraph/internal/knowledge"
)

const (
	importantMarker = " ⭐"
	unusedMarker    = " 🔴 UNUSED"
)

// GroupHits groups hits by file in first-seen order and keeps at most
// maxFiles files.
func GroupHits(hits []knowledge.Hit, maxFiles int) []string {
	groups := groupHits(hits, maxFiles)
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.path)
	}
	return out
}

func groupHits(hits []knowledge.Hit, maxFiles int) []fileHits {
	index := make(map[string]int)
	var groups []fileHits
	for _, h := range hits {
		i, ok := index[h.FilePath]
		if !ok {
			index[h.FilePath] = len(groups)
			groups = append(groups, fileHits{path: h.FilePath})
			i = len(groups) - 1
		}
		groups[i].hits = append(groups[i].hits, h)
	}
	if maxFiles > 0 && len(groups) > maxFiles {
		groups = groups[:maxFiles]
	}
	return groups
}

// SearchReport renders ranked hits as markdown: a tree of matching files, a
// numbered list, and the best snippet of each file with every matching range.
func SearchReport(hits []knowledge.Hit, maxFiles int) string {
	groups := groupHits(hits, maxFiles)
	paths := make([]string, 0, len(groups))
	for _, g := range groups {
		paths = append(paths, g.path)
	}

	var sb strings.Builder
	sb.WriteString("### 1. Repository Tree (Search Hits)\n")
	fmt.Fprintf(&sb, "```\n%s\n```\n", FormatAsTree(paths))

	fmt.Fprintf(&sb, "### 2. Top %d Most Relevant Files\n", maxFiles)
	for i, p := range paths {
		fmt.Fprintf(&sb, "%d. `%s`\n", i+1, p)
	}

	sb.WriteString("\n### 3. Relevant Snippets\n")
	for _, g := range groups {
		best := g.hits[0]
		ranges := make([]string, 0, len(g.hits))
		for _, h := range g.hits {
			ranges = append(ranges, fmt.Sprintf("%d-%d", h.StartLine, h.EndLine))
		}
		fmt.Fprintf(&sb, "#### File: `%s`\n", g.path)
		fmt.Fprintf(&sb, "*Lines: %d-%d (Also relevant at: %s)*\n", best.StartLine, best.EndLine, strings.Join(ranges, ", "))
		fmt.Fprintf(&sb, "```\n%s\n```\n", best.Content)
		sb.WriteString("---\n")
	}
	return sb.String()
}

// ContextReport renders the dependency context of each file: direct imports
// and importers, indirect links to the other files, and code structure.
func ContextReport(query string, files []FileReport, important map[string]bool) string {
	if len(files) == 0 {
		return "No files found matching query."
	}

	mark := func(id string) string {
		if important[id] {
			return importantMarker
		}
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Semantic Graph Search: `%s`\n\n", query)
	fmt.Fprintf(&sb, "Found **%d** files.\n\n", len(files))

	for _, f := range files {
		header := ""
		if f.Important {
			header = importantMarker + " IMPORTANT"
		}
		fmt.Fprintf(&sb, "## `%s`%s\n\n", f.Path, header)
		sb.WriteString("### Connections\n\n")

		writeLinks(&sb, "Imports (outgoing)", f.Imports, mark)
		writeLinks(&sb, "Imported by (incoming)", f.ImportedBy, mark)

		if len(f.Indirect) > 0 {
			sb.WriteString("**Indirect connections:**\n")
			for _, link := range f.Indirect {
				via := make([]string, 0, len(link.Via))
				for _, p := range link.Via {
					via = append(via, "`"+p+"`")
				}
				fmt.Fprintf(&sb, "- `%s` via [%s]\n", link.Target, strings.Join(via, " → "))
			}
			sb.WriteString("\n")
		}

		if len(f.Items) > 0 {
			sb.WriteString("### Code Structure\n\n")
			for _, item := range f.Items {
				writeItem(&sb, item)
			}
		}
		sb.WriteString("---\n\n")
	}
	return sb.String()
}

func writeLinks(sb *strings.Builder, title string, ids []string, mark func(string) string) {
	if len(ids) == 0 {
		fmt.Fprintf(sb, "**%s:** None\n\n", title)
		return
	}
	fmt.Fprintf(sb, "**%s:**\n", title)
	for _, id := range ids {
		fmt.Fprintf(sb, "- `%s`%s\n", id, mark(id))
	}
	sb.WriteString("\n")
}

func writeItem(sb *strings.Builder, item extractor.CodeItem) {
	unused := ""
	if item.Unused {
		unused = unusedMarker
	}

	if item.Type == extractor.KindClass {
		fmt.Fprintf(sb, "#### class `%s` (L%d)%s\n", item.Name, item.Line, unused)
		if item.Docstring != "" {
			fmt.Fprintf(sb, "> %s\n\n", item.Docstring)
		}
		if len(item.Methods) > 0 {
			sb.WriteString("**Methods:**\n")
			for _, m := range item.Methods {
				mUnused := ""
				if m.Unused {
					mUnused = unusedMarker
				}
				fmt.Fprintf(sb, "- `%s` (L%d)%s\n", m.Name, m.Line, mUnused)
				if m.Docstring != "" {
					fmt.Fprintf(sb, "  > %s\n", m.Docstring)
				}
			}
			sb.WriteString("\n")
		}
		return
	}

	sig := item.Signature
	if sig == "" {
		sig = item.Name
	}
	fmt.Fprintf(sb, "#### func `%s` (L%d)%s\n", sig, item.Line, unused)
	if item.Docstring != "" {
		fmt.Fprintf(sb, "> %s\n\n", item.Docstring)
	}
}
