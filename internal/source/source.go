// Package source abstracts where the music library is read from.
// The sync engine only needs two capabilities from a source: listing a
// directory with metadata, and streaming a file's bytes.
package source

import (
	"context"
	"io"
	"path"
	"strings"
)

// Entry is a single child of a listed directory.
type Entry struct {
	Name  string
	IsDir bool
	Size  int64 // bytes, zero for directories
}

// Source is a read-only tree addressed by slash-separated relative paths.
// The root is addressed as ".".
type Source interface {
	// Identity identifies the source for cache keying (e.g. its root path).
	Identity() string

	// ReadDir lists the direct children of rel.
	ReadDir(ctx context.Context, rel string) ([]Entry, error)

	// Open streams the contents of the file at rel.
	Open(ctx context.Context, rel string) (io.ReadCloser, error)
}

// Join builds a slash-separated relative path from segments.
func Join(elem ...string) string {
	return path.Join(elem...)
}

// Split returns the top-level and leaf segments of a two-level relpath.
// ok is false when rel does not have exactly two segments.
func Split(rel string) (top, leaf string, ok bool) {
	top, leaf, found := strings.Cut(rel, "/")
	if !found || top == "" || leaf == "" || strings.Contains(leaf, "/") {
		return "", "", false
	}
	return top, leaf, true
}
