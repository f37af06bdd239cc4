package syncer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmunix/ghettosync/internal/source"
)

// ValidatePath ensures path lies strictly inside root. The root itself
// does not qualify. Returns ErrPathEscape otherwise.
func ValidatePath(path, root string) error {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(root)

	prefix := cleanRoot
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	if cleanPath == cleanRoot || !strings.HasPrefix(cleanPath, prefix) {
		return fmt.Errorf("%w: %s", ErrPathEscape, path)
	}
	return nil
}

// leafPath maps a two-level relpath onto the destination and verifies
// containment.
func leafPath(root, rel string) (string, error) {
	top, leaf, ok := source.Split(rel)
	if !ok || isDotSegment(top) || isDotSegment(leaf) {
		return "", fmt.Errorf("%w: %q is not an artist/album path", ErrPathEscape, rel)
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if err := ValidatePath(target, root); err != nil {
		return "", err
	}
	return target, nil
}

func isDotSegment(s string) bool {
	return s == "." || s == ".."
}
