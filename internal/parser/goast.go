package parser

import (
	"context"
	goast "go/ast"
	goparser "go/parser"
	"go/token"

	"codeatlas/internal/model"
)

// CompilerFile is the handle for a go/parser parse (ShapeCompilerAPI). Node
// positions are token.Pos offsets that must be resolved against FileSet.
type CompilerFile struct {
	File    *goast.File
	FileSet *token.FileSet
	Source  []byte
}

type goASTBackend struct {
	exts []string
}

func newGoASTBackend() *goASTBackend {
	return &goASTBackend{exts: []string{".go"}}
}

func (b *goASTBackend) Name() string     { return "go-ast" }
func (b *goASTBackend) Language() string { return "go" }
func (b *goASTBackend) Shape() Shape     { return ShapeCompilerAPI }

func (b *goASTBackend) CanParse(ext string) bool {
	return hasExt(b.exts, ext)
}

func (b *goASTBackend) Parse(ctx context.Context, content []byte, path string) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{
			Language: b.Language(),
			Backend:  b.Name(),
			Err:      &model.ParseError{Path: path, Backend: b.Name(), Message: err.Error()},
		}
	}
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, path, content, goparser.ParseComments)
	if err != nil {
		return Outcome{
			Language: b.Language(),
			Backend:  b.Name(),
			Err:      &model.ParseError{Path: path, Backend: b.Name(), Message: err.Error()},
		}
	}
	return Outcome{
		OK:       true,
		Shape:    ShapeCompilerAPI,
		Language: b.Language(),
		Backend:  b.Name(),
		Compiler: &CompilerFile{File: file, FileSet: fset, Source: content},
	}
}
