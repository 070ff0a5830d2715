package extractor

import (
	goast "go/ast"
	"go/token"
	"strconv"
	"strings"

	"codeatlas/internal/model"
	"codeatlas/internal/parser"
)

// compilerWalker reduces a go/ast file to symbol records. Positions are
// token.Pos offsets resolved against the owning token.FileSet.
type compilerWalker struct {
	fset    *token.FileSet
	source  []byte
	core    bool
	symbols []model.SymbolInfo
}

func walkCompilerFile(cf *parser.CompilerFile, core bool) []model.SymbolInfo {
	w := &compilerWalker{fset: cf.FileSet, source: cf.Source, core: core}

	for _, imp := range cf.File.Imports {
		w.addImport(imp)
	}
	for _, decl := range cf.File.Decls {
		switch d := decl.(type) {
		case *goast.FuncDecl:
			w.addFunc(d)
		case *goast.GenDecl:
			w.addGenDecl(d, model.ScopeGlobal)
		}
	}
	return w.symbols
}

func (w *compilerWalker) addImport(imp *goast.ImportSpec) {
	path, err := strconv.Unquote(imp.Path.Value)
	if err != nil {
		path = strings.Trim(imp.Path.Value, `"`)
	}
	name := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		name = path[idx+1:]
	}
	if imp.Name != nil && imp.Name.Name != "_" && imp.Name.Name != "." {
		name = imp.Name.Name
	}
	sym := w.baseSymbol(imp, name, model.CategoryImport, model.ScopeGlobal)
	sym.Imported = true
	w.symbols = append(w.symbols, sym)
}

func (w *compilerWalker) addFunc(d *goast.FuncDecl) {
	sym := w.baseSymbol(d, d.Name.Name, model.CategoryFunction, model.ScopeGlobal)
	sym.Exported = goast.IsExported(d.Name.Name)
	if w.core {
		sym.Signature = w.funcSignature(d)
		if d.Doc != nil {
			sym.Docstring = strings.TrimSpace(d.Doc.Text())
		}
	}
	w.symbols = append(w.symbols, sym)

	if d.Body != nil {
		w.walkBody(d.Body)
	}
}

// walkBody visits function bodies with the forEachChild-style visitor,
// collecting locally declared variables.
func (w *compilerWalker) walkBody(body *goast.BlockStmt) {
	goast.Inspect(body, func(n goast.Node) bool {
		switch s := n.(type) {
		case *goast.DeclStmt:
			if gd, ok := s.Decl.(*goast.GenDecl); ok {
				w.addGenDecl(gd, model.ScopeFunction)
			}
			return false
		case *goast.AssignStmt:
			if s.Tok != token.DEFINE {
				return true
			}
			for _, lhs := range s.Lhs {
				ident, ok := lhs.(*goast.Ident)
				if !ok || ident.Name == "_" {
					continue
				}
				sym := w.baseSymbol(ident, ident.Name, model.CategoryVariable, model.ScopeFunction)
				w.symbols = append(w.symbols, sym)
			}
			return true
		}
		return true
	})
}

func (w *compilerWalker) addGenDecl(d *goast.GenDecl, scope model.Scope) {
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *goast.TypeSpec:
			cat := model.CategoryType
			switch s.Type.(type) {
			case *goast.StructType:
				cat = model.CategoryClass
			case *goast.InterfaceType:
				cat = model.CategoryInterface
			}
			sym := w.baseSymbol(s, s.Name.Name, cat, scope)
			sym.Exported = goast.IsExported(s.Name.Name)
			if w.core {
				sym.Docstring = w.specDoc(d, s.Doc)
			}
			w.symbols = append(w.symbols, sym)
		case *goast.ValueSpec:
			for _, name := range s.Names {
				if name.Name == "_" {
					continue
				}
				sym := w.baseSymbol(s, name.Name, model.CategoryVariable, scope)
				sym.Exported = scope == model.ScopeGlobal && goast.IsExported(name.Name)
				if w.core {
					sym.Docstring = w.specDoc(d, s.Doc)
				}
				w.symbols = append(w.symbols, sym)
			}
		}
	}
}

func (w *compilerWalker) specDoc(decl *goast.GenDecl, specDoc *goast.CommentGroup) string {
	if specDoc != nil {
		return strings.TrimSpace(specDoc.Text())
	}
	if decl.Doc != nil && len(decl.Specs) == 1 {
		return strings.TrimSpace(decl.Doc.Text())
	}
	return ""
}

// funcSignature renders the declaration header from the raw source between
// the func keyword and the body.
func (w *compilerWalker) funcSignature(d *goast.FuncDecl) string {
	start := w.fset.Position(d.Pos()).Offset
	end := len(w.source)
	if d.Body != nil {
		end = w.fset.Position(d.Body.Pos()).Offset
	}
	if start < 0 || end > len(w.source) || start >= end {
		return ""
	}
	return collapseWhitespace(string(w.source[start:end]))
}

// baseSymbol fills positions from the FileSet: 1-based lines, 0-based
// columns, end inclusive of the node's final character.
func (w *compilerWalker) baseSymbol(n goast.Node, name string, cat model.Category, scope model.Scope) model.SymbolInfo {
	start := w.fset.Position(n.Pos())
	end := w.fset.Position(n.End())
	endCol := end.Column - 1
	if endCol > 0 {
		endCol--
	}
	return model.SymbolInfo{
		Name:        name,
		Category:    cat,
		Scope:       scope,
		StartLine:   start.Line,
		EndLine:     end.Line,
		StartColumn: start.Column - 1,
		EndColumn:   endCol,
		Imported:    cat == model.CategoryImport,
	}
}
