package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestScanProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", []byte("package main\n"))
	writeFile(t, root, "lib/util.py", []byte("def util():\n    pass\n"))
	writeFile(t, root, "node_modules/dep/index.js", []byte("ignored"))
	writeFile(t, root, ".git/config", []byte("ignored"))
	writeFile(t, root, "asset.bin", []byte{0x00, 0x01, 0x02})

	c := NewCrawler()
	files, err := c.ScanProject(root)
	require.NoError(t, err)

	paths := map[string]int{}
	for i, f := range files {
		paths[f.RelPath] = i
	}

	t.Run("Ignored directories are skipped", func(t *testing.T) {
		assert.NotContains(t, paths, filepath.Join("node_modules", "dep", "index.js"))
		assert.NotContains(t, paths, filepath.Join(".git", "config"))
		assert.Len(t, files, 3)
	})

	t.Run("Readable text files carry content", func(t *testing.T) {
		f := files[paths["main.go"]]
		require.NotNil(t, f.Content)
		assert.Equal(t, "package main\n", *f.Content)
		assert.Equal(t, ".go", f.Extension)
	})

	t.Run("Binary files are listed without content", func(t *testing.T) {
		f := files[paths["asset.bin"]]
		assert.Nil(t, f.Content)
	})

	t.Run("Stable path order", func(t *testing.T) {
		for i := 1; i < len(files); i++ {
			assert.Less(t, files[i-1].Path, files[i].Path)
		}
	})
}

func TestScanProject_MissingRoot(t *testing.T) {
	c := NewCrawler()
	_, err := c.ScanProject(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
