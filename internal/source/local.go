// internal/source/local.go
package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local is a Source backed by a directory on the local filesystem.
type Local struct {
	root string
}

// NewLocal returns a Source rooted at dir. The identity is the cleaned
// absolute path so "music/" and "./music" share a cache entry.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}
	return &Local{root: filepath.Clean(abs)}, nil
}

// Identity returns the absolute root directory.
func (l *Local) Identity() string {
	return l.root
}

// Root returns the absolute root directory.
func (l *Local) Root() string {
	return l.root
}

// ReadDir lists rel with sizes. Symlinks are followed, so a linked album
// directory lists as a directory. Entries whose metadata cannot be read
// (including dangling links) are reported as zero-sized files rather than
// failing the whole listing.
func (l *Local) ReadDir(ctx context.Context, rel string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(l.abs(rel))
	if err != nil {
		return nil, err
	}

	dir := l.abs(rel)
	stat := func(name string) (fs.FileInfo, error) {
		return os.Stat(filepath.Join(dir, name))
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		entries = append(entries, entryFromDirEntry(d, stat))
	}
	return entries, nil
}

// Open opens the file at rel for reading.
func (l *Local) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(l.abs(rel))
}

func (l *Local) abs(rel string) string {
	return filepath.Join(l.root, filepath.FromSlash(rel))
}

// entryFromDirEntry converts d, resolving symlinks through stat.
func entryFromDirEntry(d fs.DirEntry, stat func(name string) (fs.FileInfo, error)) Entry {
	e := Entry{Name: d.Name(), IsDir: d.IsDir()}
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := stat(d.Name())
		if err != nil {
			return e
		}
		e.IsDir = info.IsDir()
		if !e.IsDir {
			e.Size = info.Size()
		}
		return e
	}
	if e.IsDir {
		return e
	}
	if info, err := d.Info(); err == nil {
		e.Size = info.Size()
	}
	return e
}

// Ensure Local implements Source.
var _ Source = (*Local)(nil)
