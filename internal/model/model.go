// Package model defines the shared symbol and file data structures used by
// every analysis stage.
package model

// Category classifies what kind of declaration a symbol is.
type Category string

const (
	CategoryFunction  Category = "function"
	CategoryClass     Category = "class"
	CategoryVariable  Category = "variable"
	CategoryImport    Category = "import"
	CategoryExport    Category = "export"
	CategoryInterface Category = "interface"
	CategoryType      Category = "type"
	CategoryEnum      Category = "enum"
)

// Scope describes the lexical region a symbol is declared in.
type Scope string

const (
	ScopeGlobal    Scope = "global"
	ScopeFunction  Scope = "function"
	ScopeClass     Scope = "class"
	ScopeModule    Scope = "module"
	ScopeBlock     Scope = "block"
	ScopeInterface Scope = "interface"
)

// ReferenceKind classifies a recorded occurrence of a symbol.
type ReferenceKind string

const (
	RefDefinition ReferenceKind = "definition"
	RefUsage      ReferenceKind = "usage"
	RefImport     ReferenceKind = "import"
	RefExport     ReferenceKind = "export"
)

// Reference is a single occurrence of a symbol in some file. References are
// empty at extraction time and populated by the dependency mapper.
type Reference struct {
	FilePath string        `json:"filepath"`
	Line     int           `json:"line"`
	Column   int           `json:"column"`
	Context  string        `json:"context,omitempty"`
	Kind     ReferenceKind `json:"kind"`
}

// SymbolInfo is the normalized symbol record every extraction path reduces to.
// Lines are 1-based, columns 0-based; end positions include the symbol's last
// character. Signature and Docstring are populated only for core languages.
type SymbolInfo struct {
	Name        string      `json:"name"`
	Category    Category    `json:"category"`
	Scope       Scope       `json:"scope"`
	StartLine   int         `json:"start_line"`
	EndLine     int         `json:"end_line"`
	StartColumn int         `json:"start_column"`
	EndColumn   int         `json:"end_column"`
	Signature   string      `json:"signature,omitempty"`
	Docstring   string      `json:"docstring,omitempty"`
	Exported    bool        `json:"exported"`
	Imported    bool        `json:"imported"`
	References  []Reference `json:"references,omitempty"`
}

// SourceFile is the input record produced by the discovery stage. A nil
// Content means the file could not be read (or was filtered out) and is
// skipped without error.
type SourceFile struct {
	Path      string  `json:"path"`
	RelPath   string  `json:"rel_path,omitempty"`
	Extension string  `json:"extension"`
	Content   *string `json:"content,omitempty"`
}

// Text returns the file content, or "" when absent.
func (f *SourceFile) Text() string {
	if f.Content == nil {
		return ""
	}
	return *f.Content
}

// IndexedFile associates an input file with its extracted symbols.
type IndexedFile struct {
	Path     string       `json:"path"`
	Language string       `json:"language"`
	Symbols  []SymbolInfo `json:"symbols"`
}

// AnalysisStats aggregates counts used for reporting.
type AnalysisStats struct {
	TotalFiles        int              `json:"total_files"`
	TotalSymbols      int              `json:"total_symbols"`
	TotalEdges        int              `json:"total_edges"`
	SymbolsByCategory map[Category]int `json:"symbols_by_category"`
	FilesByLanguage   map[string]int   `json:"files_by_language"`
}
