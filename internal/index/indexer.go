// Package index builds multi-key lookup structures over extracted symbols.
// All query results preserve insertion order: file processing order first,
// then in-file declaration order.
package index

import (
	"regexp"
	"sync"

	"codeatlas/internal/model"
)

// Entry is one indexed symbol with its run-scoped id. Ids are sequential and
// valid only within a single build.
type Entry struct {
	ID     int              `json:"id"`
	File   string           `json:"file"`
	Symbol model.SymbolInfo `json:"symbol"`
}

// Stats aggregates index-level counts.
type Stats struct {
	TotalSymbols int                    `json:"total_symbols"`
	ByCategory   map[model.Category]int `json:"by_category"`
	ByScope      map[model.Scope]int    `json:"by_scope"`
	Exported     int                    `json:"exported"`
	Imported     int                    `json:"imported"`
}

// Criteria describes a composite query. Zero-valued fields are ignored; each
// set field further filters the result.
type Criteria struct {
	Name        string
	NamePattern string
	Category    model.Category
	File        string
	Scope       model.Scope
	Exported    *bool
	Imported    *bool
	Signature   string
}

type tables struct {
	entries     []*Entry
	byName      map[string][]*Entry
	byCategory  map[model.Category][]*Entry
	byFile      map[string][]*Entry
	byScope     map[model.Scope][]*Entry
	exported    []*Entry
	imported    []*Entry
	bySignature map[string][]*Entry
}

func newTables() *tables {
	return &tables{
		byName:      make(map[string][]*Entry),
		byCategory:  make(map[model.Category][]*Entry),
		byFile:      make(map[string][]*Entry),
		byScope:     make(map[model.Scope][]*Entry),
		bySignature: make(map[string][]*Entry),
	}
}

// Index is the symbol indexer. Build replaces all tables atomically: readers
// see either the previous index or the complete new one, never a partial.
type Index struct {
	mu     sync.RWMutex
	t      *tables
	nextID int
}

// New creates an empty index.
func New() *Index {
	return &Index{t: newTables()}
}

// Build indexes the file→symbols map, assigning run-scoped sequential ids in
// input order. The previous index contents are discarded.
func (ix *Index) Build(files []model.IndexedFile) {
	t := newTables()
	id := 0
	for _, f := range files {
		for i := range f.Symbols {
			e := &Entry{ID: id, File: f.Path, Symbol: f.Symbols[i]}
			id++
			t.entries = append(t.entries, e)
			t.byName[e.Symbol.Name] = append(t.byName[e.Symbol.Name], e)
			t.byCategory[e.Symbol.Category] = append(t.byCategory[e.Symbol.Category], e)
			t.byFile[e.File] = append(t.byFile[e.File], e)
			t.byScope[e.Symbol.Scope] = append(t.byScope[e.Symbol.Scope], e)
			if e.Symbol.Exported {
				t.exported = append(t.exported, e)
			}
			if e.Symbol.Imported {
				t.imported = append(t.imported, e)
			}
			if e.Symbol.Signature != "" {
				t.bySignature[e.Symbol.Signature] = append(t.bySignature[e.Symbol.Signature], e)
			}
		}
	}

	ix.mu.Lock()
	ix.t = t
	ix.nextID = id
	ix.mu.Unlock()
}

// Clear resets all indexes.
func (ix *Index) Clear() {
	ix.mu.Lock()
	ix.t = newTables()
	ix.nextID = 0
	ix.mu.Unlock()
}

// All returns every entry in insertion order.
func (ix *Index) All() []*Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return copyEntries(ix.t.entries)
}

// FindSymbol returns entries with an exact name match.
func (ix *Index) FindSymbol(name string) []*Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return copyEntries(ix.t.byName[name])
}

// FindByCategory returns entries of one category.
func (ix *Index) FindByCategory(cat model.Category) []*Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return copyEntries(ix.t.byCategory[cat])
}

// FindSymbolsInFile returns every symbol extracted from a file.
func (ix *Index) FindSymbolsInFile(path string) []*Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return copyEntries(ix.t.byFile[path])
}

// FindByScope returns entries declared in the given scope kind.
func (ix *Index) FindByScope(scope model.Scope) []*Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return copyEntries(ix.t.byScope[scope])
}

// FindBySignature returns entries with an exact signature match.
func (ix *Index) FindBySignature(sig string) []*Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return copyEntries(ix.t.bySignature[sig])
}

// FindExported returns entries flagged as exported.
func (ix *Index) FindExported() []*Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return copyEntries(ix.t.exported)
}

// FindImported returns entries flagged as imported.
func (ix *Index) FindImported() []*Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return copyEntries(ix.t.imported)
}

// FindByNamePattern returns entries whose name matches the regex pattern.
func (ix *Index) FindByNamePattern(pattern string) ([]*Entry, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []*Entry
	for _, e := range ix.t.entries {
		if re.MatchString(e.Symbol.Name) {
			out = append(out, e)
		}
	}
	return out, nil
}

// FindByCategoryPattern returns entries whose category matches the pattern.
func (ix *Index) FindByCategoryPattern(pattern string) ([]*Entry, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []*Entry
	for _, e := range ix.t.entries {
		if re.MatchString(string(e.Symbol.Category)) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Query applies every set criterion as a successive filter over the
// insertion-ordered entry list; results are never re-sorted.
func (ix *Index) Query(c Criteria) ([]*Entry, error) {
	var nameRe *regexp.Regexp
	if c.NamePattern != "" {
		re, err := regexp.Compile(c.NamePattern)
		if err != nil {
			return nil, err
		}
		nameRe = re
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []*Entry
	for _, e := range ix.t.entries {
		if c.Name != "" && e.Symbol.Name != c.Name {
			continue
		}
		if nameRe != nil && !nameRe.MatchString(e.Symbol.Name) {
			continue
		}
		if c.Category != "" && e.Symbol.Category != c.Category {
			continue
		}
		if c.File != "" && e.File != c.File {
			continue
		}
		if c.Scope != "" && e.Symbol.Scope != c.Scope {
			continue
		}
		if c.Exported != nil && e.Symbol.Exported != *c.Exported {
			continue
		}
		if c.Imported != nil && e.Symbol.Imported != *c.Imported {
			continue
		}
		if c.Signature != "" && e.Symbol.Signature != c.Signature {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Stats returns aggregate counts over the current index.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	s := Stats{
		TotalSymbols: len(ix.t.entries),
		ByCategory:   make(map[model.Category]int),
		ByScope:      make(map[model.Scope]int),
		Exported:     len(ix.t.exported),
		Imported:     len(ix.t.imported),
	}
	for cat, entries := range ix.t.byCategory {
		s.ByCategory[cat] = len(entries)
	}
	for scope, entries := range ix.t.byScope {
		s.ByScope[scope] = len(entries)
	}
	return s
}

func copyEntries(in []*Entry) []*Entry {
	if len(in) == 0 {
		return nil
	}
	out := make([]*Entry, len(in))
	copy(out, in)
	return out
}
