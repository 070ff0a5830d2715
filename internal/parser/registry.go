// Package parser dispatches source files to grammar backends and normalizes
// their output into a tagged parse outcome. Three structurally different AST
// shapes are supported, plus a universal text fallback that always matches.
package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeatlas/internal/model"
)

// Shape tags which concrete AST representation a successful parse produced.
// The symbol extractor selects its walker on this tag alone.
type Shape int

const (
	// ShapeNone means no structural parse is available; callers must use
	// the regex fallback baseline.
	ShapeNone Shape = iota
	// ShapeGeneric is a tree-sitter node graph: type, children, text and
	// row/column start/end points.
	ShapeGeneric
	// ShapeESTree is an ESTree-like node graph: type, body/params arrays
	// and byte-offset positions resolved against the source text.
	ShapeESTree
	// ShapeCompilerAPI is a go/ast node graph: visitor-based traversal and
	// token.Pos offsets resolved against the owning token.FileSet.
	ShapeCompilerAPI
)

func (s Shape) String() string {
	switch s {
	case ShapeGeneric:
		return "generic"
	case ShapeESTree:
		return "estree"
	case ShapeCompilerAPI:
		return "compiler"
	default:
		return "none"
	}
}

// Outcome is the normalized result of a parse attempt. Exactly one of the
// handle fields is set when OK is true and Shape is not ShapeNone.
type Outcome struct {
	OK       bool
	Shape    Shape
	Language string
	Backend  string
	Generic  *GenericTree
	ESTree   *ESTreeProgram
	Compiler *CompilerFile
	Err      error
}

// Close releases any native resources held by the outcome.
func (o *Outcome) Close() {
	if o.Generic != nil && o.Generic.Tree != nil {
		o.Generic.Tree.Close()
		o.Generic = nil
	}
}

// Backend is a single grammar backend. Backends must be safe for concurrent
// use; stateful native parsers are pooled internally.
type Backend interface {
	Name() string
	Language() string
	Shape() Shape
	CanParse(ext string) bool
	Parse(ctx context.Context, content []byte, path string) Outcome
}

// Registry holds an ordered list of backends. The first backend whose
// CanParse accepts an extension wins; the text backend is registered last
// and accepts everything, so dispatch never fails.
type Registry struct {
	backends []Backend
	timeout  time.Duration
}

// NewRegistry builds a registry from the given backends, in order. A
// universal text backend is appended as the guaranteed fallback.
func NewRegistry(timeout time.Duration, backends ...Backend) *Registry {
	all := make([]Backend, 0, len(backends)+1)
	all = append(all, backends...)
	all = append(all, newTextBackend())
	return &Registry{backends: all, timeout: timeout}
}

// DefaultRegistry wires every built-in backend: go/ast for Go, go-fast for
// JavaScript, tree-sitter grammars for the remaining structured languages,
// and the text fallback.
func DefaultRegistry(timeout time.Duration) *Registry {
	backends := []Backend{newGoASTBackend(), newESTreeBackend()}
	backends = append(backends, sitterBackends()...)
	return NewRegistry(timeout, backends...)
}

// BackendFor returns the first backend accepting the extension. It never
// returns nil because the text backend accepts everything.
func (r *Registry) BackendFor(ext string) Backend {
	ext = NormalizeExt(ext)
	for _, b := range r.backends {
		if b.CanParse(ext) {
			return b
		}
	}
	return r.backends[len(r.backends)-1]
}

// LanguageFor returns the language name the extension dispatches to.
func (r *Registry) LanguageFor(ext string) string {
	return r.BackendFor(ext).Language()
}

// Grammared reports whether the extension has a structural grammar backend
// (anything except the text fallback).
func (r *Registry) Grammared(ext string) bool {
	return r.BackendFor(ext).Name() != textBackendName
}

// ShapeFor returns the AST shape the extension's backend would produce on a
// successful parse, letting callers that only handle some shapes avoid the
// parse entirely.
func (r *Registry) ShapeFor(ext string) Shape {
	return r.BackendFor(ext).Shape()
}

// Parse dispatches content to the matching backend. It never panics outward:
// backend panics and errors are converted into a failed outcome. A per-call
// timeout bounds pathological inputs.
func (r *Registry) Parse(ctx context.Context, content []byte, ext, path string) (out Outcome) {
	b := r.BackendFor(ext)
	defer func() {
		if rec := recover(); rec != nil {
			out = Outcome{
				Language: b.Language(),
				Backend:  b.Name(),
				Err:      &model.ParseError{Path: path, Backend: b.Name(), Message: fmt.Sprint(rec)},
			}
		}
	}()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return b.Parse(ctx, content, path)
}

// NormalizeExt lowercases an extension and guarantees a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ext
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func hasExt(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}
