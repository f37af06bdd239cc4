// internal/dest/dest_test.go
package dest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	composed   = "Beyonc\u00e9/Lemonade"  // é as one code point
	decomposed = "Beyonce\u0301/Lemonade" // e + combining acute
)

func TestNormalize(t *testing.T) {
	assert.NotEqual(t, composed, decomposed)
	assert.Equal(t, composed, Normalize(decomposed))
	assert.Equal(t, composed, Normalize(composed))
}

func TestProbe_MissingRoot(t *testing.T) {
	s, err := Probe(filepath.Join(t.TempDir(), "not-mounted"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("Artist/Album"))
}

func TestProbe_TwoLevelsDirectoriesOnly(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "Artist A", "Album 1")
	mkdir(t, root, "Artist A", "Album 2", "Disc 1")
	mkdir(t, root, "Artist B")
	write(t, filepath.Join(root, "Artist A", "cover.jpg"))
	write(t, filepath.Join(root, "stray.txt"))

	s, err := Probe(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"Artist A/Album 1", "Artist A/Album 2"}, s.Paths())
	assert.True(t, s.Contains("Artist A/Album 1"))
	assert.False(t, s.Contains("Artist B"))
	assert.False(t, s.Contains("Artist A/Album 2/Disc 1"))
}

func TestProbe_NormalizesDecomposedNames(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, filepath.FromSlash(decomposed))

	s, err := Probe(root)
	require.NoError(t, err)

	assert.True(t, s.Contains(composed))
	assert.True(t, s.Contains(decomposed))

	onDisk, ok := s.Lookup(composed)
	require.True(t, ok)
	assert.Equal(t, decomposed, onDisk, "lookup must return the name as stored")
}

func TestProbe_FollowsSymlinkedLeaf(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()
	mkdir(t, root, "Artist")
	if err := os.Symlink(target, filepath.Join(root, "Artist", "Linked")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	s, err := Probe(root)
	require.NoError(t, err)
	assert.True(t, s.Contains("Artist/Linked"))
}

func TestNewSet(t *testing.T) {
	s := NewSet(decomposed, "X/Y")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(composed))
	assert.True(t, s.Contains("X/Y"))
	assert.False(t, s.Contains("X/Z"))
}

func mkdir(t *testing.T, parts ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(parts...), 0755))
}

func write(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}
