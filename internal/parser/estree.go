package parser

import (
	"context"

	fastast "github.com/t14raptor/go-fast/ast"
	fastparser "github.com/t14raptor/go-fast/parser"

	"codeatlas/internal/model"
)

// ESTreeProgram is the handle for a go-fast parse (ShapeESTree). Node
// positions are byte offsets into Source.
type ESTreeProgram struct {
	Program *fastast.Program
	Source  string
}

// estreeBackend parses JavaScript with go-fast. The parser rejects ES-module
// syntax; those files degrade to the regex baseline via the failed outcome.
type estreeBackend struct {
	exts []string
}

func newESTreeBackend() *estreeBackend {
	return &estreeBackend{exts: []string{".js", ".jsx", ".mjs", ".cjs"}}
}

func (b *estreeBackend) Name() string     { return "go-fast" }
func (b *estreeBackend) Language() string { return "javascript" }
func (b *estreeBackend) Shape() Shape     { return ShapeESTree }

func (b *estreeBackend) CanParse(ext string) bool {
	return hasExt(b.exts, ext)
}

func (b *estreeBackend) Parse(ctx context.Context, content []byte, path string) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{
			Language: b.Language(),
			Backend:  b.Name(),
			Err:      &model.ParseError{Path: path, Backend: b.Name(), Message: err.Error()},
		}
	}
	src := string(content)
	program, err := fastparser.ParseFile(src)
	if err != nil {
		return Outcome{
			Language: b.Language(),
			Backend:  b.Name(),
			Err:      &model.ParseError{Path: path, Backend: b.Name(), Message: err.Error()},
		}
	}
	return Outcome{
		OK:       true,
		Shape:    ShapeESTree,
		Language: b.Language(),
		Backend:  b.Name(),
		ESTree:   &ESTreeProgram{Program: program, Source: src},
	}
}
