package resolver

import (
	"path/filepath"
	"strings"
)

// Rule names reported in a Resolution.
const (
	RuleConcretePath = "concrete_path"
	RuleExternal     = "external"
	RuleRelative     = "relative"
	RuleModulePath   = "module_path"
	RuleStripped     = "stripped_prefix"
)

// Resolution is the outcome of resolving one reference.
type Resolution struct {
	// Path is root-relative and slash-separated; empty when unresolved.
	Path string
	// Rule names the step that decided the outcome.
	Rule string
}

func (r Resolution) Resolved() bool { return r.Path != "" }

type verdict int

const (
	next verdict = iota
	found
	stop
)

type rule struct {
	name  string
	apply func(fromDir, ref string) (string, verdict)
}

// Resolver maps import references to files inside a repository. It holds no
// mutable state and is safe for concurrent use.
type Resolver struct {
	root  string
	roots SourceRoots
	chain []rule
}

// relativeSuffixes is the fixed trial order for references with a leading dot.
var relativeSuffixes = []string{
	"", ".py", ".js", ".ts", ".jsx", ".tsx",
	"/index.js", "/index.ts", "/index.jsx", "/index.tsx",
	"/" + PackageMarker,
}

// NewResolver creates a resolver for the repository at root. When roots is
// empty, root is the only source root.
func NewResolver(root string, roots SourceRoots) (*Resolver, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		roots = SourceRoots{absRoot}
	}
	r := &Resolver{root: absRoot, roots: roots}
	r.chain = []rule{
		{RuleConcretePath, r.concretePath},
		{RuleExternal, r.externalGate},
		{RuleRelative, r.relative},
		{RuleModulePath, r.modulePath},
		{RuleStripped, r.strippedPrefix},
	}
	return r, nil
}

// Root returns the absolute repository root.
func (r *Resolver) Root() string { return r.root }

// Roots returns the source roots searched for absolute references.
func (r *Resolver) Roots() SourceRoots { return r.roots }

// Resolve maps ref, found in the file at fromAbs, to a repository file.
func (r *Resolver) Resolve(fromAbs, ref string) (string, bool) {
	res := r.Explain(fromAbs, ref)
	return res.Path, res.Resolved()
}

// Explain runs the rule chain and reports which rule decided.
func (r *Resolver) Explain(fromAbs, ref string) Resolution {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Resolution{Rule: RuleExternal}
	}
	fromDir := filepath.Dir(fromAbs)
	for _, step := range r.chain {
		path, v := step.apply(fromDir, ref)
		switch v {
		case found:
			return Resolution{Path: path, Rule: step.name}
		case stop:
			return Resolution{Rule: step.name}
		}
	}
	return Resolution{Rule: RuleExternal}
}

// concretePath accepts an already resolved root-relative python path.
func (r *Resolver) concretePath(_, ref string) (string, verdict) {
	if strings.HasPrefix(ref, ".") || !strings.HasSuffix(ref, ".py") {
		return "", next
	}
	if isFile(filepath.Join(r.root, filepath.FromSlash(ref))) {
		return filepath.ToSlash(filepath.Clean(filepath.FromSlash(ref))), found
	}
	return "", next
}

// externalGate rejects bare module names whose first segment exists under
// no source root.
func (r *Resolver) externalGate(_, ref string) (string, verdict) {
	if strings.HasPrefix(ref, ".") || strings.Contains(ref, "/") {
		return "", next
	}
	first := strings.SplitN(ref, ".", 2)[0]
	for _, root := range r.roots {
		if exists(filepath.Join(root, first)) || isFile(filepath.Join(root, first+".py")) {
			return "", next
		}
	}
	return "", stop
}

func (r *Resolver) relative(fromDir, ref string) (string, verdict) {
	if !strings.HasPrefix(ref, ".") {
		return "", next
	}
	target := filepath.Join(fromDir, filepath.FromSlash(ref))
	for _, suffix := range relativeSuffixes {
		candidate := target + filepath.FromSlash(suffix)
		if !isFile(candidate) {
			continue
		}
		if rel, ok := r.relPath(candidate); ok {
			return rel, found
		}
	}
	return "", stop
}

func (r *Resolver) modulePath(_, ref string) (string, verdict) {
	path := strings.ReplaceAll(ref, ".", "/")
	if rel, ok := r.firstExisting(path, ".py", "/"+PackageMarker); ok {
		return rel, found
	}
	return "", next
}

// strippedPrefix drops trailing segments one at a time so that a reference
// to a symbol inside a module still lands on the module file.
func (r *Resolver) strippedPrefix(_, ref string) (string, verdict) {
	if strings.Contains(ref, "/") {
		return "", next
	}
	parts := strings.Split(ref, ".")
	for i := len(parts) - 1; i >= 1; i-- {
		prefix := strings.Join(parts[:i], "/")
		if rel, ok := r.firstExisting(prefix, ".py"); ok {
			return rel, found
		}
	}
	return "", next
}

func (r *Resolver) firstExisting(path string, suffixes ...string) (string, bool) {
	for _, root := range r.roots {
		for _, suffix := range suffixes {
			candidate := filepath.Join(root, filepath.FromSlash(path+suffix))
			if !isFile(candidate) {
				continue
			}
			if rel, ok := r.relPath(candidate); ok {
				return rel, true
			}
		}
	}
	return "", false
}

func (r *Resolver) relPath(abs string) (string, bool) {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
