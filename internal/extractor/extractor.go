package extractor

import (
	"fmt"
	"os"
)

// Extractor dispatches files to the extractor of their family.
type Extractor struct {
	byFamily map[Family]LanguageExtractor
}

// NewExtractor creates an extractor covering every supported family.
func NewExtractor() *Extractor {
	return &Extractor{
		byFamily: map[Family]LanguageExtractor{
			FamilyPython: &PythonExtractor{},
			FamilyScript: &ScriptExtractor{},
		},
	}
}

// For returns the extractor for a file name, or nil when unsupported.
func (e *Extractor) For(name string) LanguageExtractor {
	return e.byFamily[FamilyOf(name)]
}

// ImportsFromFile reads path and returns its raw imports.
func (e *Extractor) ImportsFromFile(path string) ([]RawImport, error) {
	lang := e.For(path)
	if lang == nil {
		return nil, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return lang.ExtractImports(src), nil
}

// ItemsFromFile reads path and returns its declared symbols.
func (e *Extractor) ItemsFromFile(path string) ([]CodeItem, error) {
	lang := e.For(path)
	if lang == nil {
		return nil, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return lang.ExtractItems(src)
}
