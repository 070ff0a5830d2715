// Package crawler is the discovery collaborator: it walks a directory tree
// and produces the ordered SourceFile records the analysis core consumes.
// The core itself never touches the filesystem.
package crawler

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codeatlas/internal/model"
)

const maxFileSize = 2 << 20 // files past this are handed over without content

// Crawler scans a directory for source files.
type Crawler struct {
	ignored []string
}

// NewCrawler creates a crawler with the usual directory exclusions.
func NewCrawler() *Crawler {
	return &Crawler{
		ignored: []string{".git", "vendor", "node_modules", "dist", "build", "__pycache__"},
	}
}

// ScanProject walks root and returns SourceFile records in stable path
// order. Binary and oversized files are included with nil content, which the
// core treats as "no symbols, no error".
func (c *Crawler) ScanProject(root string) ([]model.SourceFile, error) {
	var files []model.SourceFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		file := model.SourceFile{
			Path:      path,
			RelPath:   rel,
			Extension: strings.ToLower(filepath.Ext(path)),
		}

		// Read and filter here so the core never sees unusable content.
		if info, err := d.Info(); err == nil && info.Size() <= maxFileSize {
			if data, err := os.ReadFile(path); err == nil && !isBinary(data) {
				text := string(data)
				file.Content = &text
			}
		}

		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// isBinary sniffs for a NUL byte in the leading chunk.
func isBinary(data []byte) bool {
	n := len(data)
	if n > 8000 {
		n = 8000
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}
