// Package dest probes the destination tree for leaf directories that are
// already present.
package dest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns s in Unicode composed form (NFC). Some devices store
// names decomposed, so every comparison goes through this.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// Set is the set of leaf directories present at the destination when it
// was probed. Keys are normalized; values are the names as found on disk.
// A Set is immutable after Probe returns.
type Set struct {
	leaves map[string]string
}

// NewSet builds a Set from relative leaf paths. Used by tests and by
// callers that already know the destination contents.
func NewSet(relPaths ...string) Set {
	s := Set{leaves: make(map[string]string, len(relPaths))}
	for _, rel := range relPaths {
		s.leaves[Normalize(rel)] = rel
	}
	return s
}

// Contains reports whether relPath exists at the destination.
func (s Set) Contains(relPath string) bool {
	_, ok := s.leaves[Normalize(relPath)]
	return ok
}

// Lookup returns the on-disk spelling of relPath.
func (s Set) Lookup(relPath string) (string, bool) {
	onDisk, ok := s.leaves[Normalize(relPath)]
	return onDisk, ok
}

// Len returns the number of leaves.
func (s Set) Len() int {
	return len(s.leaves)
}

// Paths returns the on-disk leaf paths in sorted order.
func (s Set) Paths() []string {
	paths := make([]string, 0, len(s.leaves))
	for _, onDisk := range s.leaves {
		paths = append(paths, onDisk)
	}
	sort.Strings(paths)
	return paths
}

// Probe lists the destination two levels deep, directories only.
// A missing root yields an empty set.
func Probe(root string) (Set, error) {
	s := Set{leaves: make(map[string]string)}

	tops, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return Set{}, fmt.Errorf("probe destination: %w", err)
	}

	for _, top := range tops {
		if !isDir(root, top) {
			continue
		}

		leaves, err := os.ReadDir(filepath.Join(root, top.Name()))
		if err != nil {
			return Set{}, fmt.Errorf("probe destination %s: %w", top.Name(), err)
		}

		for _, leaf := range leaves {
			if !isDir(filepath.Join(root, top.Name()), leaf) {
				continue
			}
			rel := path.Join(top.Name(), leaf.Name())
			s.leaves[Normalize(rel)] = rel
		}
	}

	return s, nil
}

// isDir follows symlinks so a linked album directory counts as present.
func isDir(parent string, d fs.DirEntry) bool {
	if d.IsDir() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, d.Name()))
	return err == nil && info.IsDir()
}
