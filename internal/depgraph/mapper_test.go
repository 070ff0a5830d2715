package depgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeatlas/internal/index"
	"codeatlas/internal/model"
	"codeatlas/internal/parser"
)

func strPtr(s string) *string { return &s }

func TestMapper_TextScan(t *testing.T) {
	// Two plain-text files with symbols known to the index: util.txt declares
	// helper, main.txt declares run and mentions helper twice.
	utilContent := "def helper():\n    return 1\n"
	mainContent := "def run():\n    a = helper()\n    b = helper()\n"

	files := []model.SourceFile{
		{Path: "util.txt", Extension: ".txt", Content: strPtr(utilContent)},
		{Path: "main.txt", Extension: ".txt", Content: strPtr(mainContent)},
	}

	ix := index.New()
	ix.Build([]model.IndexedFile{
		{Path: "util.txt", Symbols: []model.SymbolInfo{
			{Name: "helper", Category: model.CategoryFunction, StartLine: 1},
		}},
		{Path: "main.txt", Symbols: []model.SymbolInfo{
			{Name: "run", Category: model.CategoryFunction, StartLine: 1},
		}},
	})

	m := NewMapper(parser.DefaultRegistry(0))
	analysis := m.Map(context.Background(), files, ix)
	require.NotNil(t, analysis)
	assert.Empty(t, m.Errors())

	// run (id 1) uses helper (id 0) with weight 2.
	var usage *Edge
	for i := range analysis.Graph.Edges {
		e := &analysis.Graph.Edges[i]
		if e.From == 1 && e.To == 0 && e.Kind == EdgeUsage {
			usage = e
		}
	}
	require.NotNil(t, usage, "expected a usage edge from run to helper")
	assert.Equal(t, 2, usage.Weight, "both call sites count")

	// helper gained a usage reference pointing at main.txt.
	helperEntries := ix.FindSymbol("helper")
	require.Len(t, helperEntries, 1)
	refs := helperEntries[0].Symbol.References
	require.NotEmpty(t, refs)
	assert.Equal(t, "main.txt", refs[0].FilePath)
	assert.Equal(t, model.RefUsage, refs[0].Kind)
	assert.Equal(t, 2, refs[0].Line)
}

func TestMapper_ImportEdges(t *testing.T) {
	aContent := "export function foo() { return 1; }\n"
	bContent := "import { foo } from './a';\nconst x = foo();\n"

	files := []model.SourceFile{
		{Path: "a.txt", Extension: ".txt", Content: strPtr(aContent)},
		{Path: "b.txt", Extension: ".txt", Content: strPtr(bContent)},
	}

	ix := index.New()
	ix.Build([]model.IndexedFile{
		{Path: "a.txt", Symbols: []model.SymbolInfo{
			{Name: "foo", Category: model.CategoryFunction, Exported: true, StartLine: 1},
		}},
		{Path: "b.txt", Symbols: []model.SymbolInfo{
			{Name: "foo", Category: model.CategoryImport, Imported: true, StartLine: 1},
			{Name: "x", Category: model.CategoryVariable, StartLine: 2},
		}},
	})

	m := NewMapper(parser.DefaultRegistry(0))
	analysis := m.Map(context.Background(), files, ix)

	var importEdge, usageEdge bool
	for _, e := range analysis.Graph.Edges {
		if e.Kind == EdgeImport && e.From == 1 && e.To == 0 {
			importEdge = true
		}
		if e.Kind == EdgeUsage && e.To == 0 && e.From != 0 {
			usageEdge = true
		}
	}
	assert.True(t, importEdge, "import symbol links to the exported declaration")
	assert.True(t, usageEdge, "call site produces a usage edge")

	fooEntries := ix.FindSymbol("foo")
	var exportedFoo *index.Entry
	for _, e := range fooEntries {
		if e.Symbol.Exported {
			exportedFoo = e
		}
	}
	require.NotNil(t, exportedFoo)
	var hasImportRef bool
	for _, r := range exportedFoo.Symbol.References {
		if r.Kind == model.RefImport && r.FilePath == "b.txt" {
			hasImportRef = true
		}
	}
	assert.True(t, hasImportRef)
}

func TestMapper_TreeScan(t *testing.T) {
	// TypeScript routes through the grammar backend, so matches come from the
	// AST walk rather than the raw-text scan.
	aContent := "export function foo(): number { return 1; }\n"
	bContent := "import { foo } from \"./a\";\nexport function bar(): number { return foo(); }\n"

	files := []model.SourceFile{
		{Path: "a.ts", Extension: ".ts", Content: strPtr(aContent)},
		{Path: "b.ts", Extension: ".ts", Content: strPtr(bContent)},
	}

	ix := index.New()
	ix.Build([]model.IndexedFile{
		{Path: "a.ts", Symbols: []model.SymbolInfo{
			{Name: "foo", Category: model.CategoryFunction, Exported: true, StartLine: 1},
		}},
		{Path: "b.ts", Symbols: []model.SymbolInfo{
			{Name: "foo", Category: model.CategoryImport, Imported: true, StartLine: 1},
			{Name: "bar", Category: model.CategoryFunction, Exported: true, StartLine: 2},
		}},
	})

	m := NewMapper(parser.DefaultRegistry(0))
	analysis := m.Map(context.Background(), files, ix)
	assert.Empty(t, m.Errors())

	var barUsesFoo bool
	for _, e := range analysis.Graph.Edges {
		if e.From == 2 && e.To == 0 && e.Kind == EdgeUsage {
			barUsesFoo = true
		}
	}
	assert.True(t, barUsesFoo, "bar's body mentions foo")
}

func TestMapper_NonGenericShapesSkipReparse(t *testing.T) {
	// Go dispatches to the compiler-API backend, which the mapper never
	// re-walks: the file goes straight to the text tier. Even syntactically
	// broken Go yields edges and no scan error, because no parse happens.
	brokenGo := "package broken\n\nfunc caller( {\n\thelper()\n"

	files := []model.SourceFile{
		{Path: "util.go", Extension: ".go", Content: strPtr("package util\n\nfunc helper() {}\n")},
		{Path: "broken.go", Extension: ".go", Content: strPtr(brokenGo)},
	}

	ix := index.New()
	ix.Build([]model.IndexedFile{
		{Path: "util.go", Symbols: []model.SymbolInfo{
			{Name: "helper", Category: model.CategoryFunction, StartLine: 3},
		}},
		{Path: "broken.go", Symbols: []model.SymbolInfo{
			{Name: "caller", Category: model.CategoryFunction, StartLine: 3},
		}},
	})

	m := NewMapper(parser.DefaultRegistry(0))
	analysis := m.Map(context.Background(), files, ix)

	assert.Empty(t, m.Errors())

	var callerUsesHelper bool
	for _, e := range analysis.Graph.Edges {
		if e.From == 1 && e.To == 0 && e.Kind == EdgeUsage {
			callerUsesHelper = true
		}
	}
	assert.True(t, callerUsesHelper)
}

func TestMapper_EmptyInputs(t *testing.T) {
	m := NewMapper(parser.DefaultRegistry(0))
	ix := index.New()

	analysis := m.Map(context.Background(), nil, ix)
	require.NotNil(t, analysis)
	assert.Empty(t, analysis.Graph.Nodes)
	assert.Empty(t, analysis.Graph.Edges)
	assert.Empty(t, analysis.CircularDependencies)

	// Files with no content contribute nothing.
	analysis = m.Map(context.Background(), []model.SourceFile{{Path: "x.bin", Extension: ".bin"}}, ix)
	assert.Empty(t, analysis.Graph.Edges)
}
