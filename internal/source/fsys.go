package source

import (
	"context"
	"io"
	"io/fs"
	"path"
)

// FS adapts an fs.FS (an archive, an embedded tree, fstest.MapFS) to Source.
type FS struct {
	fsys     fs.FS
	identity string
}

// FromFS wraps fsys. identity is used as the cache key.
func FromFS(fsys fs.FS, identity string) *FS {
	return &FS{fsys: fsys, identity: identity}
}

// Identity returns the identity given to FromFS.
func (s *FS) Identity() string {
	return s.identity
}

// ReadDir lists rel.
func (s *FS) ReadDir(ctx context.Context, rel string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirents, err := fs.ReadDir(s.fsys, rel)
	if err != nil {
		return nil, err
	}

	stat := func(name string) (fs.FileInfo, error) {
		return fs.Stat(s.fsys, path.Join(rel, name))
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		entries = append(entries, entryFromDirEntry(d, stat))
	}
	return entries, nil
}

// Open opens the file at rel.
func (s *FS) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.fsys.Open(rel)
}

var _ Source = (*FS)(nil)
