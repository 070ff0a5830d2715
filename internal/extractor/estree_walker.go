package extractor

import (
	"sort"
	"strings"

	fastast "github.com/t14raptor/go-fast/ast"

	"codeatlas/internal/model"
	"codeatlas/internal/parser"
)

// estreeWalker reduces a go-fast program to symbol records. Node positions
// are byte offsets, resolved against a precomputed line-offset table.
type estreeWalker struct {
	source  string
	lines   []int // byte offset of the start of each line
	core    bool
	symbols []model.SymbolInfo
}

func walkESTreeProgram(program *parser.ESTreeProgram, core bool) []model.SymbolInfo {
	w := &estreeWalker{
		source: program.Source,
		lines:  lineOffsets(program.Source),
		core:   core,
	}
	for _, stmt := range program.Program.Body {
		w.visitStmt(stmt.Stmt, model.ScopeGlobal)
	}
	return w.symbols
}

func (w *estreeWalker) visitStmt(stmt fastast.Stmt, scope model.Scope) {
	if stmt == nil {
		return
	}
	switch s := stmt.(type) {
	case *fastast.FunctionDeclaration:
		if s.Function == nil || s.Function.Name == nil {
			return
		}
		w.add(s.Function.Name.Name, model.CategoryFunction, scope, int(s.Function.Function))
		if s.Function.Body != nil {
			for _, body := range s.Function.Body.List {
				w.visitStmt(body.Stmt, model.ScopeFunction)
			}
		}

	case *fastast.ClassDeclaration:
		if s.Class == nil || s.Class.Name == nil {
			return
		}
		w.add(s.Class.Name.Name, model.CategoryClass, scope, int(s.Class.Class))
		for _, element := range s.Class.Body {
			w.visitClassElement(element.Element)
		}

	case *fastast.VariableDeclaration:
		for _, decl := range s.List {
			if decl.Target == nil || decl.Target.Target == nil {
				continue
			}
			name := bindingName(decl.Target.Target)
			if name == "" {
				continue
			}
			category := model.CategoryVariable
			if decl.Initializer != nil && decl.Initializer.Expr != nil {
				switch decl.Initializer.Expr.(type) {
				case *fastast.FunctionLiteral, *fastast.ArrowFunctionLiteral:
					category = model.CategoryFunction
				}
			}
			w.add(name, category, scope, int(s.Idx))
		}

	case *fastast.BlockStatement:
		inner := scope
		if inner == model.ScopeGlobal {
			inner = model.ScopeBlock
		}
		for _, body := range s.List {
			w.visitStmt(body.Stmt, inner)
		}
	}
}

func (w *estreeWalker) visitClassElement(element fastast.Element) {
	if element == nil {
		return
	}
	switch e := element.(type) {
	case *fastast.MethodDefinition:
		if e.Key == nil || e.Key.Expr == nil {
			return
		}
		if name := keyName(e.Key.Expr); name != "" {
			w.add(name, model.CategoryFunction, model.ScopeClass, int(e.Idx))
		}
		if e.Body != nil && e.Body.Body != nil {
			for _, body := range e.Body.Body.List {
				w.visitStmt(body.Stmt, model.ScopeFunction)
			}
		}

	case *fastast.FieldDefinition:
		if e.Key == nil || e.Key.Expr == nil {
			return
		}
		if name := keyName(e.Key.Expr); name != "" {
			w.add(name, model.CategoryVariable, model.ScopeClass, int(e.Idx))
		}
	}
}

func (w *estreeWalker) add(name string, cat model.Category, scope model.Scope, idx int) {
	line, col := w.position(idx)
	sym := model.SymbolInfo{
		Name:        name,
		Category:    cat,
		Scope:       scope,
		StartLine:   line,
		EndLine:     line,
		StartColumn: col,
		EndColumn:   w.lineEndColumn(line, col),
		Exported:    w.isExported(name),
	}
	if w.core {
		if cat == model.CategoryFunction {
			sym.Signature = name + "()"
		}
		sym.Docstring = w.leadingComment(line)
	}
	w.symbols = append(w.symbols, sym)
}

// lineEndColumn returns the 0-based column of the last character on a line.
// go-fast nodes expose only their starting offset, so a declaration's extent
// is approximated by the remainder of its first line.
func (w *estreeWalker) lineEndColumn(line, col int) int {
	start := w.lines[line-1]
	end := len(w.source)
	if line < len(w.lines) {
		end = w.lines[line] - 1 // offset of the trailing newline
	}
	if end <= start {
		return col
	}
	return end - start - 1
}

// position resolves a byte offset to a 1-based line and 0-based column.
func (w *estreeWalker) position(idx int) (int, int) {
	if idx < 0 {
		idx = 0
	}
	if idx > len(w.source) {
		idx = len(w.source)
	}
	line := sort.Search(len(w.lines), func(i int) bool { return w.lines[i] > idx })
	return line, idx - w.lines[line-1]
}

// isExported covers the CommonJS convention go-fast can parse: a
// module.exports or exports.X line mentioning the name.
func (w *estreeWalker) isExported(name string) bool {
	for _, line := range strings.Split(w.source, "\n") {
		if !strings.Contains(line, "module.exports") && !strings.Contains(line, "exports.") {
			continue
		}
		if strings.Contains(line, name) {
			return true
		}
	}
	return false
}

// leadingComment gathers // and /* */ lines directly above the declaration.
func (w *estreeWalker) leadingComment(line int) string {
	lines := strings.Split(w.source, "\n")
	var collected []string
	for i := line - 2; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") ||
			strings.HasPrefix(trimmed, "/*") || strings.HasSuffix(trimmed, "*/") {
			collected = append([]string{trimmed}, collected...)
			if strings.HasPrefix(trimmed, "/*") {
				break
			}
			continue
		}
		break
	}
	return cleanComment(strings.Join(collected, "\n"))
}

func bindingName(target fastast.Target) string {
	if target == nil {
		return ""
	}
	if ident, ok := target.(*fastast.Identifier); ok {
		return ident.Name
	}
	return ""
}

func keyName(expr fastast.Expr) string {
	switch e := expr.(type) {
	case *fastast.Identifier:
		return e.Name
	case *fastast.PrivateIdentifier:
		if e.Identifier != nil {
			return "#" + e.Identifier.Name
		}
	case *fastast.StringLiteral:
		return e.Value
	}
	return ""
}

// lineOffsets returns the byte offset of each line start; lines[0] == 0.
func lineOffsets(source string) []int {
	offsets := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}
