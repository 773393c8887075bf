package extractor

import (
	"strings"
	"unicode/utf8"
)

const (
	maxDocLen       = 200
	maxMethodDocLen = 150
)

// truncateDoc cuts doc to limit runes and appends "..." when anything was dropped.
func truncateDoc(doc string, limit int) string {
	if utf8.RuneCountInString(doc) <= limit {
		return doc
	}
	runes := []rune(doc)
	return string(runes[:limit]) + "..."
}

// stringLiteralBody strips the prefix and quotes of a python string literal.
func stringLiteralBody(lit string) string {
	lit = strings.TrimLeft(lit, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(lit) >= 2*len(q) && strings.HasPrefix(lit, q) && strings.HasSuffix(lit, q) {
			return lit[len(q) : len(lit)-len(q)]
		}
	}
	return lit
}

// cleanDoc normalizes docstring indentation: the first line is left-trimmed,
// the common indent of the rest is removed, and blank edges are dropped.
func cleanDoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")

	margin := -1
	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}
		indent := len(line) - len(content)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
