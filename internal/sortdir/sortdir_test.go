package sortdir

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSort(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Zappa", "ABBA", "Motörhead", ".hidden"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ABBA", "01.mp3"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "playlist.m3u"), []byte("x"), 0644))

	require.NoError(t, Sort(dir, testLogger()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{".hidden", "ABBA", "Motörhead", "Zappa", "playlist.m3u"}, names)
	assert.FileExists(t, filepath.Join(dir, "ABBA", "01.mp3"))
	assert.NoDirExists(t, filepath.Join(dir, TempName))
}

func TestSort_ScratchExists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, TempName), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "A"), 0755))

	err := Sort(dir, testLogger())
	assert.ErrorIs(t, err, ErrTempExists)
	assert.DirExists(t, filepath.Join(dir, "A"))
}

func TestSort_NotDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.ErrorIs(t, Sort(file, testLogger()), ErrNotDir)
}

func TestSort_Missing(t *testing.T) {
	err := Sort(filepath.Join(t.TempDir(), "missing"), testLogger())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSort_NothingToDo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Only"), 0755))

	require.NoError(t, Sort(dir, testLogger()))
	assert.DirExists(t, filepath.Join(dir, "Only"))
	assert.NoDirExists(t, filepath.Join(dir, TempName))
}
