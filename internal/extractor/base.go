package extractor

import (
	"path/filepath"
	"strings"
)

// Family groups source languages by how their imports are extracted.
type Family int

const (
	FamilyUnknown Family = iota
	// FamilyPython files are parsed into a syntax tree.
	FamilyPython
	// FamilyScript covers JavaScript and TypeScript, scanned with patterns.
	FamilyScript
)

var familyByExt = map[string]Family{
	".py":  FamilyPython,
	".js":  FamilyScript,
	".ts":  FamilyScript,
	".jsx": FamilyScript,
	".tsx": FamilyScript,
}

// FamilyOf picks the family for a file name by extension.
func FamilyOf(name string) Family {
	return familyByExt[strings.ToLower(filepath.Ext(name))]
}

// Supported reports whether name belongs to a known family.
func Supported(name string) bool {
	return FamilyOf(name) != FamilyUnknown
}

// Language is the node type tag reported for files of this family.
func (f Family) Language() string {
	switch f {
	case FamilyPython:
		return "python"
	case FamilyScript:
		return "javascript"
	default:
		return "unknown"
	}
}

func (f Family) String() string { return f.Language() }

// RawImport is an unresolved import reference.
type RawImport struct {
	Token string
	// Level is 0 for absolute imports and N for N leading dots.
	Level int
	// Optional marks imports found inside a try block.
	Optional bool
}

// Item kinds.
const (
	KindFunction = "function"
	KindClass    = "class"
	KindMethod   = "method"
)

// CodeItem is a declared symbol with its location and documentation.
type CodeItem struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Line      int        `json:"line"`
	Docstring string     `json:"docstring"`
	Signature string     `json:"signature,omitempty"`
	Methods   []CodeItem `json:"methods,omitempty"`
	Unused    bool       `json:"unused"`
}

// LanguageExtractor is implemented once per family.
type LanguageExtractor interface {
	Family() Family
	// ExtractImports never fails; unparseable input yields no imports.
	ExtractImports(src []byte) []RawImport
	ExtractItems(src []byte) ([]CodeItem, error)
}
