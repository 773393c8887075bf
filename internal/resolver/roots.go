package resolver

import (
	"os"
	"path/filepath"
)

// PackageMarker is the file that makes a python directory a package.
const PackageMarker = "__init__.py"

// SourceRoots are the absolute directories absolute imports are looked up
// under. The repository root is always first.
type SourceRoots []string

// DiscoverSourceRoots returns root followed by every first-level
// subdirectory that has at least one child directory containing a package
// marker, such as src/ in a src/pkg/__init__.py layout. Excluded names are
// never considered.
func DiscoverSourceRoots(root string, excluded map[string]bool) (SourceRoots, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	roots := SourceRoots{absRoot}
	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return roots, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() || excluded[entry.Name()] {
			continue
		}
		dir := filepath.Join(absRoot, entry.Name())
		if holdsPackage(dir, excluded) {
			roots = append(roots, dir)
		}
	}
	return roots, nil
}

func holdsPackage(dir string, excluded map[string]bool) bool {
	children, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, child := range children {
		if !child.IsDir() || excluded[child.Name()] {
			continue
		}
		if isFile(filepath.Join(dir, child.Name(), PackageMarker)) {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
