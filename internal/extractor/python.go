package extractor

import (
	"context"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonExtractor reads imports and symbols from a python syntax tree.
type PythonExtractor struct{}

func (p *PythonExtractor) Family() Family { return FamilyPython }

func (p *PythonExtractor) parse(src []byte) (*sitter.Tree, bool) {
	if !utf8.Valid(src) {
		return nil, false
	}
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, false
	}
	if tree.RootNode().HasError() {
		tree.Close()
		return nil, false
	}
	return tree, true
}

// walkContext is copied on descent, so a flag set for one subtree never
// leaks into its siblings.
type walkContext struct {
	inTypeCheck bool
	inTry       bool
}

// ExtractImports returns every import outside TYPE_CHECKING blocks. Imports
// inside try blocks are kept and flagged Optional.
func (p *PythonExtractor) ExtractImports(src []byte) []RawImport {
	tree, ok := p.parse(src)
	if !ok {
		return nil
	}
	defer tree.Close()

	var out []RawImport
	collectImports(tree.RootNode(), src, walkContext{}, &out)
	return out
}

func collectImports(n *sitter.Node, src []byte, wc walkContext, out *[]RawImport) {
	switch n.Type() {
	case "import_statement":
		if !wc.inTypeCheck {
			*out = append(*out, plainImports(n, src, wc)...)
		}
		return
	case "import_from_statement":
		if !wc.inTypeCheck {
			*out = append(*out, fromImports(n, src, wc)...)
		}
		return
	case "try_statement":
		wc.inTry = true
	case "if_statement":
		if isTypeCheckingGuard(n.ChildByFieldName("condition"), src) {
			seenConsequence := false
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				next := wc
				if child.Type() == "block" && !seenConsequence {
					seenConsequence = true
					next.inTypeCheck = true
				}
				collectImports(child, src, next, out)
			}
			return
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		collectImports(n.NamedChild(i), src, wc, out)
	}
}

func isTypeCheckingGuard(cond *sitter.Node, src []byte) bool {
	if cond == nil {
		return false
	}
	text := strings.TrimSpace(cond.Content(src))
	return text == "TYPE_CHECKING" || strings.HasSuffix(text, ".TYPE_CHECKING")
}

func plainImports(n *sitter.Node, src []byte, wc walkContext) []RawImport {
	var out []RawImport
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if name := importedName(n.NamedChild(i), src); name != "" {
			out = append(out, RawImport{Token: name, Optional: wc.inTry})
		}
	}
	return out
}

// fromImports records the module itself plus module.name for each imported
// name. Relative modules keep their dot count as Level.
func fromImports(n *sitter.Node, src []byte, wc walkContext) []RawImport {
	var (
		module     string
		level      int
		haveModule bool
		names      []string
	)

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "relative_import":
			haveModule = true
			for j := 0; j < int(child.ChildCount()); j++ {
				part := child.Child(j)
				switch part.Type() {
				case "import_prefix":
					level = len(strings.TrimSpace(part.Content(src)))
				case "dotted_name":
					module = part.Content(src)
				}
			}
		case "dotted_name", "aliased_import":
			if !haveModule {
				haveModule = true
				module = child.Content(src)
				continue
			}
			if name := importedName(child, src); name != "" {
				names = append(names, name)
			}
		}
	}

	var out []RawImport
	if module != "" {
		out = append(out, RawImport{Token: module, Level: level, Optional: wc.inTry})
	}
	for _, name := range names {
		token := name
		if module != "" {
			token = module + "." + name
		}
		out = append(out, RawImport{Token: token, Level: level, Optional: wc.inTry})
	}
	return out
}

func importedName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "dotted_name", "identifier":
		return n.Content(src)
	case "aliased_import":
		if name := n.ChildByFieldName("name"); name != nil {
			return name.Content(src)
		}
	}
	return ""
}

// ExtractItems returns top-level functions and classes with their direct methods.
func (p *PythonExtractor) ExtractItems(src []byte) ([]CodeItem, error) {
	if !utf8.Valid(src) {
		return nil, ErrUndecodable
	}
	tree, ok := p.parse(src)
	if !ok {
		return nil, ErrSyntax
	}
	defer tree.Close()

	root := tree.RootNode()
	items := []CodeItem{}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		def := unwrapDecorated(root.NamedChild(i))
		switch def.Type() {
		case "function_definition":
			item := functionItem(def, src, KindFunction, maxDocLen)
			item.Signature = signature(def, src)
			items = append(items, item)
		case "class_definition":
			items = append(items, classItem(def, src))
		}
	}
	return items, nil
}

func unwrapDecorated(n *sitter.Node) *sitter.Node {
	if n.Type() == "decorated_definition" {
		if def := n.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return n
}

func functionItem(n *sitter.Node, src []byte, kind string, docLimit int) CodeItem {
	return CodeItem{
		Name:      fieldContent(n, "name", src),
		Type:      kind,
		Line:      int(n.StartPoint().Row) + 1,
		Docstring: truncateDoc(docstring(n, src), docLimit),
	}
}

func classItem(n *sitter.Node, src []byte) CodeItem {
	item := CodeItem{
		Name:      fieldContent(n, "name", src),
		Type:      KindClass,
		Line:      int(n.StartPoint().Row) + 1,
		Docstring: truncateDoc(docstring(n, src), maxDocLen),
		Methods:   []CodeItem{},
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return item
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		def := unwrapDecorated(body.NamedChild(i))
		if def.Type() == "function_definition" {
			item.Methods = append(item.Methods, functionItem(def, src, KindMethod, maxMethodDocLen))
		}
	}
	return item
}

func fieldContent(n *sitter.Node, field string, src []byte) string {
	if c := n.ChildByFieldName(field); c != nil {
		return c.Content(src)
	}
	return ""
}

// docstring returns the cleaned leading string literal of a def or class body.
func docstring(n *sitter.Node, src []byte) string {
	body := n.ChildByFieldName("body")
	if body == nil {
		return ""
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			return ""
		}
		lit := stmt.NamedChild(0)
		if lit.Type() != "string" {
			return ""
		}
		return cleanDoc(stringLiteralBody(lit.Content(src)))
	}
	return ""
}

// signature renders name(a, b) from positional parameters, stopping at *args
// or a bare * separator.
func signature(n *sitter.Node, src []byte) string {
	name := fieldContent(n, "name", src)
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return name + "()"
	}

	var args []string
loop:
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		switch param.Type() {
		case "identifier":
			args = append(args, param.Content(src))
		case "typed_parameter":
			if param.NamedChildCount() > 0 && param.NamedChild(0).Type() == "identifier" {
				args = append(args, param.NamedChild(0).Content(src))
			} else {
				break loop
			}
		case "default_parameter", "typed_default_parameter":
			args = append(args, fieldContent(param, "name", src))
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator":
			break loop
		}
	}
	return name + "(" + strings.Join(args, ", ") + ")"
}
