package analysis

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// alwaysUsed names are entry points or protocol hooks invoked implicitly.
var alwaysUsed = map[string]bool{
	"__init__": true, "__main__": true, "main": true, "app": true,
	"setup": true, "teardown": true,
	"__str__": true, "__repr__": true, "__eq__": true, "__hash__": true,
	"__len__": true, "__iter__": true, "__enter__": true, "__exit__": true,
	"__call__": true, "__getitem__": true, "__setitem__": true,
	"__new__": true, "__del__": true, "__bool__": true, "__contains__": true,
}

// nonWord is any character outside a Unicode identifier. RE2's \b only
// knows ASCII word characters.
const nonWord = `[^\p{L}\p{N}\p{M}_]`

// wholeWord matches name when no identifier character touches either side.
func wholeWord(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|` + nonWord + `)` + regexp.QuoteMeta(name) + `(?:$|` + nonWord + `)`)
}

// Candidates filters symbols down to the names worth checking: allow-listed
// names and names with a leading underscore are dropped.
func Candidates(symbols []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range symbols {
		if s == "" || alwaysUsed[s] || strings.HasPrefix(s, "_") || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// FindUnused returns the candidate symbols that never appear as a whole word
// in any python file of files other than declaring. The match is textual:
// comments, strings and unrelated identifiers count as usage, and dynamic
// access is not seen. Unreadable files are skipped.
func FindUnused(symbols []string, declaring string, files []string) map[string]bool {
	unused := make(map[string]bool)
	patterns := make(map[string]*regexp.Regexp)
	for _, s := range Candidates(symbols) {
		unused[s] = true
		patterns[s] = wholeWord(s)
	}
	if len(unused) == 0 {
		return unused
	}

	declaring = filepath.Clean(declaring)
	for _, path := range files {
		if filepath.Clean(path) == declaring || filepath.Ext(path) != ".py" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for s := range unused {
			if patterns[s].Match(content) {
				delete(unused, s)
			}
		}
		if len(unused) == 0 {
			break
		}
	}
	return unused
}
