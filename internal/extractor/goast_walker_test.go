package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeatlas/internal/model"
	"codeatlas/internal/parser"
)

const goSample = `package sample

import (
	"fmt"
	str "strings"
)

// Greeter builds greetings.
type Greeter struct {
	Prefix string
}

// Formatter renders values.
type Formatter interface {
	Format(v any) string
}

// MaxRetries bounds retry loops.
const MaxRetries = 3

// Greet renders a greeting for the given name.
func Greet(name string) string {
	result := fmt.Sprintf("hello %s", name)
	return str.ToUpper(result)
}

func internal() {}
`

func parseGo(t *testing.T, src string) *parser.CompilerFile {
	t.Helper()
	r := parser.DefaultRegistry(0)
	out := r.Parse(context.Background(), []byte(src), ".go", "sample.go")
	require.True(t, out.OK)
	require.NotNil(t, out.Compiler)
	return out.Compiler
}

func TestWalkCompilerFile(t *testing.T) {
	symbols := walkCompilerFile(parseGo(t, goSample), true)

	byName := map[string]model.SymbolInfo{}
	for _, s := range symbols {
		byName[s.Name] = s
	}

	t.Run("Imports", func(t *testing.T) {
		fmtSym, ok := byName["fmt"]
		require.True(t, ok)
		assert.Equal(t, model.CategoryImport, fmtSym.Category)
		assert.True(t, fmtSym.Imported)

		// Aliased import is recorded under its alias.
		strSym, ok := byName["str"]
		require.True(t, ok)
		assert.Equal(t, model.CategoryImport, strSym.Category)
	})

	t.Run("Type declarations", func(t *testing.T) {
		greeter, ok := byName["Greeter"]
		require.True(t, ok)
		assert.Equal(t, model.CategoryClass, greeter.Category)
		assert.True(t, greeter.Exported)
		assert.Equal(t, "Greeter builds greetings.", greeter.Docstring)

		formatter, ok := byName["Formatter"]
		require.True(t, ok)
		assert.Equal(t, model.CategoryInterface, formatter.Category)
	})

	t.Run("Functions carry signature and docstring", func(t *testing.T) {
		greet, ok := byName["Greet"]
		require.True(t, ok)
		assert.Equal(t, model.CategoryFunction, greet.Category)
		assert.True(t, greet.Exported)
		assert.Equal(t, "func Greet(name string) string", greet.Signature)
		assert.Equal(t, "Greet renders a greeting for the given name.", greet.Docstring)
		assert.Equal(t, model.ScopeGlobal, greet.Scope)

		internal, ok := byName["internal"]
		require.True(t, ok)
		assert.False(t, internal.Exported)
	})

	t.Run("Locals are function scoped", func(t *testing.T) {
		result, ok := byName["result"]
		require.True(t, ok)
		assert.Equal(t, model.CategoryVariable, result.Category)
		assert.Equal(t, model.ScopeFunction, result.Scope)
	})

	t.Run("Constants", func(t *testing.T) {
		max, ok := byName["MaxRetries"]
		require.True(t, ok)
		assert.Equal(t, model.CategoryVariable, max.Category)
		assert.True(t, max.Exported)
		assert.Equal(t, model.ScopeGlobal, max.Scope)
	})

	t.Run("Positions are 1-based lines", func(t *testing.T) {
		for _, s := range symbols {
			assert.GreaterOrEqual(t, s.StartLine, 1, "symbol %s", s.Name)
			assert.GreaterOrEqual(t, s.EndLine, s.StartLine, "symbol %s", s.Name)
			assert.GreaterOrEqual(t, s.StartColumn, 0, "symbol %s", s.Name)
		}
	})
}

func TestWalkCompilerFile_SecondaryQuality(t *testing.T) {
	symbols := walkCompilerFile(parseGo(t, goSample), false)

	for _, s := range symbols {
		assert.Empty(t, s.Signature, "symbol %s", s.Name)
		assert.Empty(t, s.Docstring, "symbol %s", s.Name)
	}
}
