package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestScanFindsDocumentsRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "sub", "b.PDF"))
	writeFile(t, filepath.Join(root, "sub", "deep", "c.pdf"))

	paths, err := New().Scan(root)
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "a.pdf"),
		filepath.Join(root, "sub", "b.PDF"),
		filepath.Join(root, "sub", "deep", "c.pdf"),
	}
	assert.Equal(t, want, paths)
	for _, p := range paths {
		assert.True(t, filepath.IsAbs(p), p)
	}
}

func TestScanIsStableAcrossRuns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "z.pdf"))
	writeFile(t, filepath.Join(root, "a.pdf"))
	writeFile(t, filepath.Join(root, "m.pdf"))

	s := New()
	first, err := s.Scan(root)
	require.NoError(t, err)
	second, err := s.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "a.pdf", filepath.Base(first[0]))
}

func TestScanCustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"))
	writeFile(t, filepath.Join(root, "b.epub"))

	paths, err := New(".epub").Scan(root)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "b.epub", filepath.Base(paths[0]))
}

func TestScanMissingRootYieldsNothing(t *testing.T) {
	paths, err := New().Scan(filepath.Join(t.TempDir(), "gone"))
	require.NoError(t, err)
	assert.Empty(t, paths)
}
