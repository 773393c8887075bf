package server

import (
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"semgraph/internal/knowledge"
)

// filterHits keeps the hits whose path matches pattern. An empty pattern
// keeps everything. Patterns follow gitignore syntax, so "*.md" matches at
// any depth.
func filterHits(hits []knowledge.Hit, pattern string) []knowledge.Hit {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return hits
	}
	matcher := ignore.CompileIgnoreLines(pattern)
	out := hits[:0:0]
	for _, h := range hits {
		if matcher.MatchesPath(h.FilePath) {
			out = append(out, h)
		}
	}
	return out
}
