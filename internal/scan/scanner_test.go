package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestScanPromptFiles(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), "alpha")
	write(t, filepath.Join(root, "nested", "b.TXT"), "beta")
	write(t, filepath.Join(root, "notes.md"), "skip")
	write(t, filepath.Join(root, ".hidden.txt"), "skip")
	write(t, filepath.Join(root, ".git", "c.txt"), "skip")
	write(t, filepath.Join(root, "big.txt"), strings.Repeat("x", MaxPromptSize+1))

	files, err := ScanPromptFiles(root)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(root, f.Path)
		require.NoError(t, err)
		rel = append(rel, r)
		assert.NotZero(t, f.Mtime)
	}
	sort.Strings(rel)
	assert.Equal(t, []string{"a.txt", filepath.Join("nested", "b.TXT")}, rel)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := ScanPromptFiles(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, os.IsNotExist(err))
}

func TestReadPrompt(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "p.txt")
	write(t, p, "  The quick brown\nfox   jumps.\n\n")

	text, err := ReadPrompt(p)
	require.NoError(t, err)
	assert.Equal(t, "The quick brown fox jumps.", text)

	empty := filepath.Join(dir, "empty.txt")
	write(t, empty, " \n\t")
	_, err = ReadPrompt(empty)
	assert.Error(t, err)
}
