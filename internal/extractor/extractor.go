// Package extractor reduces parsed files to normalized symbol records. Each
// AST shape has its own walker; files without a usable parse fall back to a
// line-oriented regex baseline.
package extractor

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"codeatlas/internal/model"
	"codeatlas/internal/parser"
)

// CoreLanguages are the languages granted full extraction, including
// signature and docstring metadata. Everything else grammar-parsed is
// secondary quality; unmatched extensions use the regex baseline.
var CoreLanguages = map[string]bool{
	"go":         true,
	"javascript": true,
	"typescript": true,
	"tsx":        true,
	"python":     true,
}

// Extractor walks parse outcomes and emits symbol records. Per-file failures
// accumulate in the sink and never abort the run.
type Extractor struct {
	registry *parser.Registry
	core     map[string]bool
	workers  int
	sink     *model.ErrorSink
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithWorkers bounds the per-file fan-out.
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithCoreLanguages overrides the core language set.
func WithCoreLanguages(langs []string) Option {
	return func(e *Extractor) {
		if len(langs) == 0 {
			return
		}
		core := make(map[string]bool, len(langs))
		for _, l := range langs {
			core[l] = true
		}
		e.core = core
	}
}

// New creates an extractor over the given backend registry.
func New(registry *parser.Registry, opts ...Option) *Extractor {
	e := &Extractor{
		registry: registry,
		core:     CoreLanguages,
		workers:  runtime.NumCPU(),
		sink:     &model.ErrorSink{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Errors returns the accumulated per-file errors.
func (e *Extractor) Errors() []error { return e.sink.Errors() }

// ClearErrors resets the error list.
func (e *Extractor) ClearErrors() { e.sink.Clear() }

// IsCore reports whether a language gets signature/docstring metadata.
func (e *Extractor) IsCore(language string) bool { return e.core[language] }

// ExtractAll fans out one task per file and merges results after all tasks
// settle, so output is independent of completion order. Files with nil
// content contribute no symbols and no error.
func (e *Extractor) ExtractAll(ctx context.Context, files []model.SourceFile) map[string][]model.SymbolInfo {
	results := make(map[string][]model.SymbolInfo, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, f := range files {
		f := f
		g.Go(func() error {
			symbols := e.ExtractFile(ctx, f)
			mu.Lock()
			results[f.Path] = symbols
			mu.Unlock()
			return nil
		})
	}
	// Per-file errors go to the sink; the group never carries one.
	_ = g.Wait()
	return results
}

// ExtractFile extracts symbols from a single file. A failed or shapeless
// parse, and a grammar parse yielding zero symbols, both degrade to the
// regex baseline.
func (e *Extractor) ExtractFile(ctx context.Context, file model.SourceFile) []model.SymbolInfo {
	if file.Content == nil {
		return nil
	}
	content := []byte(*file.Content)

	out := e.registry.Parse(ctx, content, file.Extension, file.Path)
	defer out.Close()

	if !out.OK {
		if out.Err != nil {
			e.sink.Add(out.Err)
		}
		return fallbackExtract(*file.Content)
	}

	symbols, err := e.walk(&out, file)
	if err != nil {
		e.sink.Add(&model.SymbolExtractionError{Path: file.Path, Err: err})
		return fallbackExtract(*file.Content)
	}
	if len(symbols) == 0 {
		return fallbackExtract(*file.Content)
	}
	return symbols
}

// walk dispatches on the outcome's shape tag. Walker panics are converted
// into a SymbolExtractionError by the caller.
func (e *Extractor) walk(out *parser.Outcome, file model.SourceFile) (symbols []model.SymbolInfo, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			symbols = nil
			err = fmt.Errorf("walker panic: %v", rec)
		}
	}()

	core := e.core[out.Language]
	switch out.Shape {
	case parser.ShapeGeneric:
		return walkGenericTree(out.Generic, core), nil
	case parser.ShapeESTree:
		return walkESTreeProgram(out.ESTree, core), nil
	case parser.ShapeCompilerAPI:
		return walkCompilerFile(out.Compiler, core), nil
	default:
		return nil, nil
	}
}
