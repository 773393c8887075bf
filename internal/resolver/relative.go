package resolver

import (
	"path/filepath"
	"strings"
)

// ResolveRelative turns a python relative import into a root-relative path.
// The search starts in the importing file's directory and climbs one
// directory per level beyond the first; it tries <module>.py, then
// <module>/__init__.py. The module uses dots as separators.
func (r *Resolver) ResolveRelative(fromAbs, module string, level int) (string, bool) {
	if module == "" || level <= 0 {
		return "", false
	}
	dir := filepath.Dir(fromAbs)
	for i := 0; i < level-1; i++ {
		dir = filepath.Dir(dir)
	}

	target := filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(module, ".", "/")))
	for _, candidate := range []string{target + ".py", filepath.Join(target, PackageMarker)} {
		if !isFile(candidate) {
			continue
		}
		if rel, ok := r.relPath(candidate); ok {
			return rel, true
		}
	}
	return "", false
}
