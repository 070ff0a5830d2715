package extractor

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codeatlas/internal/model"
	"codeatlas/internal/parser"
)

// Category tables: one fixed mapping per grammar from native node type to
// symbol category. Nodes without an entry contribute no symbol.

var tsCategories = map[string]model.Category{
	"function_declaration":           model.CategoryFunction,
	"generator_function_declaration": model.CategoryFunction,
	"function_signature":             model.CategoryFunction,
	"method_definition":              model.CategoryFunction,
	"class_declaration":              model.CategoryClass,
	"abstract_class_declaration":     model.CategoryClass,
	"interface_declaration":          model.CategoryInterface,
	"type_alias_declaration":         model.CategoryType,
	"enum_declaration":               model.CategoryEnum,
	"variable_declarator":            model.CategoryVariable,
	"public_field_definition":        model.CategoryVariable,
	"import_statement":               model.CategoryImport,
	"export_statement":               model.CategoryExport,
}

var pythonCategories = map[string]model.Category{
	"function_definition":   model.CategoryFunction,
	"class_definition":      model.CategoryClass,
	"assignment":            model.CategoryVariable,
	"import_statement":      model.CategoryImport,
	"import_from_statement": model.CategoryImport,
}

var rubyCategories = map[string]model.Category{
	"method":           model.CategoryFunction,
	"singleton_method": model.CategoryFunction,
	"class":            model.CategoryClass,
	"module":           model.CategoryClass,
	"assignment":       model.CategoryVariable,
}

var javaCategories = map[string]model.Category{
	"method_declaration":      model.CategoryFunction,
	"constructor_declaration": model.CategoryFunction,
	"class_declaration":       model.CategoryClass,
	"interface_declaration":   model.CategoryInterface,
	"enum_declaration":        model.CategoryEnum,
	"variable_declarator":     model.CategoryVariable,
	"import_declaration":      model.CategoryImport,
}

var rustCategories = map[string]model.Category{
	"function_item":   model.CategoryFunction,
	"struct_item":     model.CategoryClass,
	"enum_item":       model.CategoryEnum,
	"trait_item":      model.CategoryInterface,
	"type_item":       model.CategoryType,
	"const_item":      model.CategoryVariable,
	"static_item":     model.CategoryVariable,
	"let_declaration": model.CategoryVariable,
	"use_declaration": model.CategoryImport,
}

var cCategories = map[string]model.Category{
	"function_definition": model.CategoryFunction,
	"struct_specifier":    model.CategoryClass,
	"union_specifier":     model.CategoryClass,
	"enum_specifier":      model.CategoryEnum,
	"type_definition":     model.CategoryType,
	"preproc_include":     model.CategoryImport,
}

var cppCategories = map[string]model.Category{
	"function_definition": model.CategoryFunction,
	"struct_specifier":    model.CategoryClass,
	"class_specifier":     model.CategoryClass,
	"union_specifier":     model.CategoryClass,
	"enum_specifier":      model.CategoryEnum,
	"type_definition":     model.CategoryType,
	"preproc_include":     model.CategoryImport,
}

var csharpCategories = map[string]model.Category{
	"method_declaration":      model.CategoryFunction,
	"constructor_declaration": model.CategoryFunction,
	"class_declaration":       model.CategoryClass,
	"struct_declaration":      model.CategoryClass,
	"interface_declaration":   model.CategoryInterface,
	"enum_declaration":        model.CategoryEnum,
	"property_declaration":    model.CategoryVariable,
	"variable_declarator":     model.CategoryVariable,
	"using_directive":         model.CategoryImport,
}

var genericCategoryTables = map[string]map[string]model.Category{
	"typescript": tsCategories,
	"tsx":        tsCategories,
	"python":     pythonCategories,
	"ruby":       rubyCategories,
	"java":       javaCategories,
	"rust":       rustCategories,
	"c":          cCategories,
	"cpp":        cppCategories,
	"csharp":     csharpCategories,
}

// Type specifiers in C-family grammars show up at use sites as well as
// definitions; only the ones carrying a body declare a symbol.
var bodyRequired = map[string]bool{
	"struct_specifier": true,
	"class_specifier":  true,
	"union_specifier":  true,
	"enum_specifier":   true,
}

// scopeIntroducers maps node types to the scope their children live in.
var scopeIntroducers = map[string]model.Scope{
	"function_declaration":           model.ScopeFunction,
	"generator_function_declaration": model.ScopeFunction,
	"function_definition":            model.ScopeFunction,
	"function_item":                  model.ScopeFunction,
	"method_definition":              model.ScopeFunction,
	"method_declaration":             model.ScopeFunction,
	"constructor_declaration":        model.ScopeFunction,
	"method":                         model.ScopeFunction,
	"singleton_method":               model.ScopeFunction,
	"arrow_function":                 model.ScopeFunction,
	"class_declaration":              model.ScopeClass,
	"abstract_class_declaration":     model.ScopeClass,
	"class_definition":               model.ScopeClass,
	"class_specifier":                model.ScopeClass,
	"struct_item":                    model.ScopeClass,
	"class":                          model.ScopeClass,
	"interface_declaration":          model.ScopeInterface,
	"trait_item":                     model.ScopeInterface,
	"module":                         model.ScopeModule,
	"mod_item":                       model.ScopeModule,
	"namespace_definition":           model.ScopeModule,
	"namespace_declaration":          model.ScopeModule,
	"block":                          model.ScopeBlock,
	"statement_block":                model.ScopeBlock,
	"compound_statement":             model.ScopeBlock,
}

var whitespaceRe = regexp.MustCompile(`\s+`)

type genericWalker struct {
	source   []byte
	language string
	core     bool
	table    map[string]model.Category
	symbols  []model.SymbolInfo
}

// walkGenericTree reduces a tree-sitter AST to symbol records by recursive
// descent over named children, preserving document order.
func walkGenericTree(tree *parser.GenericTree, core bool) []model.SymbolInfo {
	table, ok := genericCategoryTables[tree.Language]
	if !ok {
		return nil
	}
	w := &genericWalker{
		source:   tree.Source,
		language: tree.Language,
		core:     core,
		table:    table,
	}
	w.visit(tree.RootNode(), model.ScopeGlobal)
	return w.symbols
}

func (w *genericWalker) visit(n *sitter.Node, scope model.Scope) {
	if cat, ok := w.table[n.Type()]; ok && w.declares(n) {
		if name := w.resolveName(n, cat); name != "" {
			w.symbols = append(w.symbols, w.makeSymbol(n, name, cat, scope))
		}
	}
	childScope := scope
	if s, ok := scopeIntroducers[n.Type()]; ok {
		// A bare block opens block scope, but a block serving as a function
		// or class body keeps the enclosing scope.
		if s != model.ScopeBlock || scope == model.ScopeGlobal || scope == model.ScopeModule {
			childScope = s
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.visit(n.NamedChild(i), childScope)
	}
}

func (w *genericWalker) declares(n *sitter.Node) bool {
	// An export statement wrapping a declaration is not a symbol of its own;
	// the wrapped declaration is emitted with its exported flag set.
	if n.Type() == "export_statement" && n.ChildByFieldName("declaration") != nil {
		return false
	}
	if !bodyRequired[n.Type()] {
		return true
	}
	return n.ChildByFieldName("body") != nil
}

// resolveName tries, in order: a name-bearing field, the first identifier-ish
// named child, the first identifier descendant, and finally the first
// whitespace-delimited token of the node's raw text.
func (w *genericWalker) resolveName(n *sitter.Node, cat model.Category) string {
	for _, field := range []string{"name", "declarator", "left", "pattern", "key"} {
		if c := n.ChildByFieldName(field); c != nil {
			if t := w.identifierText(c); t != "" {
				return t
			}
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if strings.Contains(c.Type(), "identifier") {
			return c.Content(w.source)
		}
	}
	if id := firstIdentifierDescendant(n, w.source, 0); id != "" {
		return id
	}
	fields := strings.Fields(n.Content(w.source))
	if len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// identifierText returns the text of an identifier node, descending through
// wrappers such as declarators and qualified names.
func (w *genericWalker) identifierText(n *sitter.Node) string {
	if strings.Contains(n.Type(), "identifier") || n.Type() == "dotted_name" {
		return n.Content(w.source)
	}
	return firstIdentifierDescendant(n, w.source, 0)
}

func firstIdentifierDescendant(n *sitter.Node, source []byte, depth int) string {
	if depth > 8 {
		return ""
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if strings.Contains(c.Type(), "identifier") || c.Type() == "dotted_name" {
			return c.Content(source)
		}
		if t := firstIdentifierDescendant(c, source, depth+1); t != "" {
			return t
		}
	}
	return ""
}

func (w *genericWalker) makeSymbol(n *sitter.Node, name string, cat model.Category, scope model.Scope) model.SymbolInfo {
	sym := model.SymbolInfo{
		Name:        name,
		Category:    cat,
		Scope:       scope,
		StartLine:   int(n.StartPoint().Row) + 1,
		EndLine:     int(n.EndPoint().Row) + 1,
		StartColumn: int(n.StartPoint().Column),
		EndColumn:   int(n.EndPoint().Column),
		Exported:    w.isExported(n),
		Imported:    cat == model.CategoryImport || hasAncestorType(n, "import"),
	}
	if w.core {
		if cat == model.CategoryFunction {
			sym.Signature = w.signature(n)
		}
		sym.Docstring = w.docstring(n)
	}
	return sym
}

// isExported is a conservative heuristic: the node or an ancestor carries an
// export marker, or the declaration text starts with the keyword.
func (w *genericWalker) isExported(n *sitter.Node) bool {
	if hasAncestorType(n, "export") {
		return true
	}
	text := strings.TrimSpace(n.Content(w.source))
	if strings.HasPrefix(text, "export ") || strings.HasPrefix(text, "pub ") {
		return true
	}
	return false
}

func hasAncestorType(n *sitter.Node, marker string) bool {
	for p := n; p != nil; p = p.Parent() {
		if strings.Contains(p.Type(), marker) {
			return true
		}
	}
	return false
}

// signature is the declaration header: node text up to the body, collapsed
// to single spaces.
func (w *genericWalker) signature(n *sitter.Node) string {
	if body := n.ChildByFieldName("body"); body != nil {
		return collapseWhitespace(string(w.source[n.StartByte():body.StartByte()]))
	}
	text := n.Content(w.source)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return collapseWhitespace(text)
}

// docstring is the nearest leading comment block, or for Python the first
// string expression of the definition body.
func (w *genericWalker) docstring(n *sitter.Node) string {
	if w.language == "python" {
		if doc := pythonBodyDocstring(n, w.source); doc != "" {
			return doc
		}
	}
	if doc := leadingComment(n, w.source); doc != "" {
		return doc
	}
	// Comments above an exported declaration sit before the export wrapper.
	if p := n.Parent(); p != nil && strings.Contains(p.Type(), "export") {
		return leadingComment(p, w.source)
	}
	return ""
}

func pythonBodyDocstring(n *sitter.Node, source []byte) string {
	body := n.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return strings.Trim(str.Content(source), "\"' \n")
}

// leadingComment gathers directly adjacent preceding comment siblings.
func leadingComment(n *sitter.Node, source []byte) string {
	var lines []string
	current := n
	for {
		prev := current.PrevSibling()
		if prev == nil || prev.Type() != "comment" {
			break
		}
		if current.StartPoint().Row-prev.EndPoint().Row > 1 {
			break
		}
		lines = append([]string{prev.Content(source)}, lines...)
		current = prev
	}
	return cleanComment(strings.Join(lines, "\n"))
}

func cleanComment(raw string) string {
	if raw == "" {
		return ""
	}
	var cleaned []string
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "///")
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "#")
		l = strings.TrimPrefix(l, "/**")
		l = strings.TrimPrefix(l, "/*")
		l = strings.TrimSuffix(l, "*/")
		l = strings.TrimPrefix(strings.TrimSpace(l), "* ")
		cleaned = append(cleaned, strings.TrimSpace(l))
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
