package model

import (
	"fmt"
	"sync"
)

// FileReadError reports content that could not be read.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// ParseError reports a backend-specific parse failure.
type ParseError struct {
	Path    string
	Backend string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s (%s): %s", e.Path, e.Backend, e.Message)
}

// SymbolExtractionError reports an unexpected failure while walking an
// otherwise-successful AST.
type SymbolExtractionError struct {
	Path string
	Err  error
}

func (e *SymbolExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *SymbolExtractionError) Unwrap() error { return e.Err }

// DependencyScanError reports a failure during the dependency mapping pass.
type DependencyScanError struct {
	Path string
	Err  error
}

func (e *DependencyScanError) Error() string {
	return fmt.Sprintf("dependency scan %s: %v", e.Path, e.Err)
}

func (e *DependencyScanError) Unwrap() error { return e.Err }

// ErrorSink accumulates per-file errors without aborting a run. It is safe
// for concurrent use.
type ErrorSink struct {
	mu   sync.Mutex
	errs []error
}

// Add records an error. Nil errors are ignored.
func (s *ErrorSink) Add(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

// Errors returns a copy of all accumulated errors.
func (s *ErrorSink) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]error, len(s.errs))
	copy(out, s.errs)
	return out
}

// Len returns the number of accumulated errors.
func (s *ErrorSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}

// Clear drops all accumulated errors.
func (s *ErrorSink) Clear() {
	s.mu.Lock()
	s.errs = nil
	s.mu.Unlock()
}
