package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeatlas/internal/model"
)

func TestFallbackExtract_Functions(t *testing.T) {
	content := "function hello() {}\n" +
		"async function fetchData() {}\n" +
		"def compute():\n" +
		"    pass\n" +
		"fn rust_style() {}\n" +
		"pub fn exported_rust() {}\n"

	symbols := fallbackExtract(content)

	names := map[string]model.SymbolInfo{}
	for _, s := range symbols {
		if s.Category == model.CategoryFunction {
			names[s.Name] = s
		}
	}
	assert.Contains(t, names, "hello")
	assert.Contains(t, names, "fetchData")
	assert.Contains(t, names, "compute")
	assert.Contains(t, names, "rust_style")
	assert.Contains(t, names, "exported_rust")

	assert.Equal(t, 1, names["hello"].StartLine)
	assert.Equal(t, 3, names["compute"].StartLine)
	assert.Equal(t, model.ScopeGlobal, names["hello"].Scope)
}

func TestFallbackExtract_Types(t *testing.T) {
	content := "class Widget {}\n" +
		"interface Renderer {}\n" +
		"struct Point {}\n" +
		"enum Color {}\n" +
		"trait Drawable {}\n"

	symbols := fallbackExtract(content)
	require.Len(t, symbols, 5)

	byName := map[string]model.Category{}
	for _, s := range symbols {
		byName[s.Name] = s.Category
	}
	assert.Equal(t, model.CategoryClass, byName["Widget"])
	assert.Equal(t, model.CategoryInterface, byName["Renderer"])
	assert.Equal(t, model.CategoryClass, byName["Point"])
	assert.Equal(t, model.CategoryEnum, byName["Color"])
	assert.Equal(t, model.CategoryInterface, byName["Drawable"])
}

func TestFallbackExtract_ImportsAndExports(t *testing.T) {
	content := "import { readFile } from 'fs'\n" +
		"require('path')\n" +
		"export default class App {}\n" +
		"module.exports = handler\n"

	symbols := fallbackExtract(content)

	var imports, exports []model.SymbolInfo
	for _, s := range symbols {
		switch s.Category {
		case model.CategoryImport:
			imports = append(imports, s)
		case model.CategoryExport:
			exports = append(exports, s)
		}
	}

	require.NotEmpty(t, imports)
	assert.Equal(t, "readFile", imports[0].Name)
	assert.True(t, imports[0].Imported)

	require.NotEmpty(t, exports)
	for _, e := range exports {
		assert.True(t, e.Exported)
	}
	// "default" and "class" are skipped in favor of the declared name.
	assert.Equal(t, "App", exports[0].Name)
}

func TestFallbackExtract_Degenerate(t *testing.T) {
	assert.Nil(t, fallbackExtract(""))
	assert.Empty(t, fallbackExtract("no declarations here\njust prose\n"))

	// Never panics on arbitrary text.
	assert.NotPanics(t, func() {
		fallbackExtract("import\nexport\nfunction\nclass\n")
	})
}

func TestFallbackExtract_Positions(t *testing.T) {
	content := "x\n  const counter = 0\n"
	symbols := fallbackExtract(content)
	require.Len(t, symbols, 1)

	s := symbols[0]
	assert.Equal(t, "counter", s.Name)
	assert.Equal(t, 2, s.StartLine)
	assert.Equal(t, 2, s.EndLine)
	assert.Equal(t, 8, s.StartColumn)
	assert.Equal(t, s.StartColumn+len("counter")-1, s.EndColumn)
}
