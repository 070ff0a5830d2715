// Package pipeline orchestrates the analysis stages: extraction, indexing
// and dependency mapping. A run always completes with best-effort results
// plus the accumulated error list; only setup failures abort it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeatlas/internal/depgraph"
	"codeatlas/internal/extractor"
	"codeatlas/internal/index"
	"codeatlas/internal/model"
	"codeatlas/internal/parser"
)

// ErrorRecord is the serializable form of an accumulated stage error.
type ErrorRecord struct {
	Stage   string `json:"stage"`
	File    string `json:"file,omitempty"`
	Message string `json:"message"`
}

// Result is the complete analysis output. Every map inside is convertible
// to ordered key/value sequences for serialization. SymbolIndex is the
// id-ordered entry list, so graph node ids resolve to symbols without
// re-deriving the assignment order from Files.
type Result struct {
	Files        []model.IndexedFile `json:"files"`
	SymbolIndex  []*index.Entry      `json:"symbol_index"`
	IndexStats   index.Stats         `json:"index_stats"`
	Dependencies *depgraph.Analysis  `json:"dependencies"`
	Stats        model.AnalysisStats `json:"stats"`
	Errors       []ErrorRecord       `json:"errors,omitempty"`
}

// Options tunes a pipeline.
type Options struct {
	Workers       int
	ParseTimeout  time.Duration
	CoreLanguages []string
}

// Pipeline wires the analysis components around one shared backend registry.
type Pipeline struct {
	registry  *parser.Registry
	extractor *extractor.Extractor
	index     *index.Index
	mapper    *depgraph.Mapper
}

// New builds a pipeline with the default backend registry.
func New(opts Options) *Pipeline {
	registry := parser.DefaultRegistry(opts.ParseTimeout)
	extOpts := []extractor.Option{}
	if opts.Workers > 0 {
		extOpts = append(extOpts, extractor.WithWorkers(opts.Workers))
	}
	if len(opts.CoreLanguages) > 0 {
		extOpts = append(extOpts, extractor.WithCoreLanguages(opts.CoreLanguages))
	}
	return &Pipeline{
		registry:  registry,
		extractor: extractor.New(registry, extOpts...),
		index:     index.New(),
		mapper:    depgraph.NewMapper(registry),
	}
}

// Index exposes the last-built symbol index for query commands.
func (p *Pipeline) Index() *index.Index { return p.index }

// Analyze runs the full analysis over the input collection. Files with nil
// content contribute no symbols and no error. The returned error is non-nil
// only for catastrophic setup failure, never for per-file issues.
func (p *Pipeline) Analyze(ctx context.Context, files []model.SourceFile) (*Result, error) {
	if ctx == nil {
		return nil, errors.New("nil context")
	}
	p.extractor.ClearErrors()
	p.mapper.ClearErrors()

	indexed := p.extractStage(ctx, files)
	p.index.Build(indexed)
	analysis := p.mapper.Map(ctx, files, p.index)

	result := &Result{
		Files:        indexed,
		SymbolIndex:  p.index.All(),
		IndexStats:   p.index.Stats(),
		Dependencies: analysis,
		Stats:        p.buildStats(indexed, analysis),
	}
	result.Errors = append(result.Errors, toRecords(p.extractor.Errors())...)
	result.Errors = append(result.Errors, toRecords(p.mapper.Errors())...)
	return result, nil
}

// extractStage fans extraction out per file, then reassembles results in
// input order so output is deterministic regardless of completion order.
func (p *Pipeline) extractStage(ctx context.Context, files []model.SourceFile) []model.IndexedFile {
	symbolsByPath := p.extractor.ExtractAll(ctx, files)

	indexed := make([]model.IndexedFile, 0, len(files))
	for _, f := range files {
		indexed = append(indexed, model.IndexedFile{
			Path:     f.Path,
			Language: p.registry.LanguageFor(f.Extension),
			Symbols:  symbolsByPath[f.Path],
		})
	}
	return indexed
}

func (p *Pipeline) buildStats(files []model.IndexedFile, analysis *depgraph.Analysis) model.AnalysisStats {
	stats := model.AnalysisStats{
		TotalFiles:        len(files),
		TotalEdges:        len(analysis.Graph.Edges),
		SymbolsByCategory: make(map[model.Category]int),
		FilesByLanguage:   make(map[string]int),
	}
	for _, f := range files {
		stats.FilesByLanguage[f.Language]++
		stats.TotalSymbols += len(f.Symbols)
		for _, s := range f.Symbols {
			stats.SymbolsByCategory[s.Category]++
		}
	}
	return stats
}

func toRecords(errs []error) []ErrorRecord {
	var out []ErrorRecord
	for _, err := range errs {
		rec := ErrorRecord{Message: err.Error()}
		var readErr *model.FileReadError
		var parseErr *model.ParseError
		var extractErr *model.SymbolExtractionError
		var scanErr *model.DependencyScanError
		switch {
		case errors.As(err, &readErr):
			rec.Stage = "read"
			rec.File = readErr.Path
		case errors.As(err, &parseErr):
			rec.Stage = "parse"
			rec.File = parseErr.Path
		case errors.As(err, &extractErr):
			rec.Stage = "extract"
			rec.File = extractErr.Path
		case errors.As(err, &scanErr):
			rec.Stage = "dependency"
			rec.File = scanErr.Path
		default:
			rec.Stage = "analysis"
		}
		out = append(out, rec)
	}
	return out
}

// Summary renders a short human-readable report.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"files=%d symbols=%d edges=%d cycles=%d orphans=%d critical=%d clusters=%d errors=%d",
		r.Stats.TotalFiles, r.Stats.TotalSymbols, r.Stats.TotalEdges,
		r.Dependencies.Stats.Cycles, r.Dependencies.Stats.Orphans,
		r.Dependencies.Stats.Critical, r.Dependencies.Stats.Clusters,
		len(r.Errors),
	)
}
