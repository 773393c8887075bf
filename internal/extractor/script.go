package extractor

import (
	"regexp"
	"strings"
)

var (
	esImportRe      = regexp.MustCompile(`import\s+(?:.*?\s+from\s+)?['"]([^'"]+)['"]`)
	requireRe       = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	dynamicImportRe = regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`)

	scriptImportPatterns = []*regexp.Regexp{esImportRe, requireRe, dynamicImportRe}

	functionDeclRe = regexp.MustCompile(`(?:export\s+)?(?:async\s+)?function\s+(\w+)\s*\([^)]*\)`)
	arrowDeclRe    = regexp.MustCompile(`(?:export\s+)?(?:const|let)\s+(\w+)\s*=\s*(?:async\s+)?\([^)]*\)\s*=>`)
	classDeclRe    = regexp.MustCompile(`(?:export\s+)?class\s+(\w+)`)
)

// ScriptExtractor scans JavaScript and TypeScript sources with patterns.
// Matches inside comments and strings are not filtered out.
type ScriptExtractor struct{}

func (s *ScriptExtractor) Family() Family { return FamilyScript }

// ExtractImports returns module references in pattern order, then
// appearance order. Duplicates are kept.
func (s *ScriptExtractor) ExtractImports(src []byte) []RawImport {
	text := string(src)
	var out []RawImport
	for _, re := range scriptImportPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			out = append(out, RawImport{Token: m[1]})
		}
	}
	return out
}

// ExtractItems finds function declarations, arrow functions bound with
// const/let, and classes. No docstrings are extracted.
func (s *ScriptExtractor) ExtractItems(src []byte) ([]CodeItem, error) {
	text := string(src)
	items := []CodeItem{}

	add := func(re *regexp.Regexp, kind string) {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			item := CodeItem{
				Name: text[loc[2]:loc[3]],
				Type: kind,
				Line: strings.Count(text[:loc[0]], "\n") + 1,
			}
			if kind == KindClass {
				item.Methods = []CodeItem{}
			}
			items = append(items, item)
		}
	}
	add(functionDeclRe, KindFunction)
	add(arrowDeclRe, KindFunction)
	add(classDeclRe, KindClass)
	return items, nil
}
