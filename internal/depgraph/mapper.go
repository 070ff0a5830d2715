package depgraph

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codeatlas/internal/index"
	"codeatlas/internal/model"
	"codeatlas/internal/parser"
)

// match accumulates co-occurrence evidence for one target name in one file.
type match struct {
	count   int
	line    int
	column  int
	context string
}

// Mapper derives dependency edges from symbol co-occurrence. Two tiers: a
// tree-sitter AST re-walk for grammar-backed files, and a raw-text scan for
// everything else. Both detect possible textual co-occurrence of a name, not
// verified semantic references; recall is favored over precision because the
// downstream retrieval stages depend on it.
type Mapper struct {
	registry *parser.Registry
	sink     *model.ErrorSink
}

// NewMapper creates a mapper over the given backend registry.
func NewMapper(registry *parser.Registry) *Mapper {
	return &Mapper{registry: registry, sink: &model.ErrorSink{}}
}

// Errors returns the accumulated per-file scan errors.
func (m *Mapper) Errors() []error { return m.sink.Errors() }

// ClearErrors resets the error list.
func (m *Mapper) ClearErrors() { m.sink.Clear() }

// Map assembles the dependency graph for all indexed symbols and runs the
// full set of graph analyses. A file that fails to re-parse contributes no
// edges and a sink error; it never stops the run.
func (m *Mapper) Map(ctx context.Context, files []model.SourceFile, ix *index.Index) *Analysis {
	g := NewGraph()
	entries := ix.All()
	for _, e := range entries {
		g.AddNode(e.ID, e.File)
	}

	byName := make(map[string][]*index.Entry)
	for _, e := range entries {
		if e.Symbol.Name != "" {
			byName[e.Symbol.Name] = append(byName[e.Symbol.Name], e)
		}
	}

	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		fileEntries := ix.FindSymbolsInFile(f.Path)
		if len(fileEntries) == 0 || f.Content == nil {
			continue
		}

		matches := m.scanFile(ctx, f, byName)
		for _, source := range fileEntries {
			m.emitEdges(g, source, matches, byName)
			m.emitImportEdge(g, source, byName)
		}
	}

	return Analyze(g)
}

// emitEdges adds one usage edge per (source symbol, target symbol) pair with
// the accumulated match count as weight, and records a usage reference on
// the target.
func (m *Mapper) emitEdges(g *Graph, source *index.Entry, matches map[string]*match, byName map[string][]*index.Entry) {
	for name, mt := range matches {
		for _, target := range byName[name] {
			if target.ID == source.ID {
				continue
			}
			_ = g.AddEdge(Edge{From: source.ID, To: target.ID, Kind: EdgeUsage, Weight: mt.count})
			target.Symbol.References = append(target.Symbol.References, model.Reference{
				FilePath: source.File,
				Line:     mt.line,
				Column:   mt.column,
				Context:  mt.context,
				Kind:     model.RefUsage,
			})
		}
	}
}

// emitImportEdge links an import symbol to same-named exported symbols
// declared in other files.
func (m *Mapper) emitImportEdge(g *Graph, source *index.Entry, byName map[string][]*index.Entry) {
	if source.Symbol.Category != model.CategoryImport {
		return
	}
	for _, target := range byName[source.Symbol.Name] {
		if target.File == source.File || !target.Symbol.Exported {
			continue
		}
		_ = g.AddEdge(Edge{From: source.ID, To: target.ID, Kind: EdgeImport, Weight: 1})
		target.Symbol.References = append(target.Symbol.References, model.Reference{
			FilePath: source.File,
			Line:     source.Symbol.StartLine,
			Column:   source.Symbol.StartColumn,
			Kind:     model.RefImport,
		})
	}
}

// scanFile counts, per known symbol name, the nodes (or text occurrences)
// mentioning it in one file. Only the tree-sitter shape gets the node-level
// scan; other backends go straight to the text tier without a wasted parse.
func (m *Mapper) scanFile(ctx context.Context, f model.SourceFile, byName map[string][]*index.Entry) map[string]*match {
	if m.registry.ShapeFor(f.Extension) == parser.ShapeGeneric {
		out := m.registry.Parse(ctx, []byte(*f.Content), f.Extension, f.Path)
		defer out.Close()

		if out.OK && out.Shape == parser.ShapeGeneric {
			return scanTree(out.Generic, byName)
		}
		if out.Err != nil {
			m.sink.Add(&model.DependencyScanError{Path: f.Path, Err: out.Err})
		}
	}
	return scanText(*f.Content, byName)
}

// scanTree walks every named node and counts substring containment of each
// known symbol name, recording the first matching node's position.
func scanTree(tree *parser.GenericTree, byName map[string][]*index.Entry) map[string]*match {
	matches := make(map[string]*match)
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		text := n.Content(tree.Source)
		for name := range byName {
			if !strings.Contains(text, name) {
				continue
			}
			mt, ok := matches[name]
			if !ok {
				mt = &match{
					line:    int(n.StartPoint().Row) + 1,
					column:  int(n.StartPoint().Column),
					context: firstLine(text),
				}
				matches[name] = mt
			}
			mt.count++
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(tree.RootNode())
	return matches
}

// scanText counts word-bounded occurrences of each known name in raw text.
func scanText(content string, byName map[string][]*index.Entry) map[string]*match {
	matches := make(map[string]*match)
	lines := strings.Split(content, "\n")
	for name := range byName {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\b`)
		if err != nil {
			continue
		}
		for i, line := range lines {
			locs := re.FindAllStringIndex(line, -1)
			if len(locs) == 0 {
				continue
			}
			mt, ok := matches[name]
			if !ok {
				mt = &match{line: i + 1, column: locs[0][0], context: strings.TrimSpace(line)}
				matches[name] = mt
			}
			mt.count += len(locs)
		}
	}
	return matches
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
