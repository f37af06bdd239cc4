// internal/syncer/copy.go
package syncer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vmunix/ghettosync/internal/source"
)

// CopyStream copies the source file at rel to dst, truncating dst if it
// already exists. A partially written dst is removed on failure.
func CopyStream(ctx context.Context, src source.Source, rel, dst string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	in, err := src.Open(ctx, rel)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", ErrCopyFailed, rel, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("%w: create %s: %v", ErrCopyFailed, dst, err)
	}

	discard := func(step string, err error) (int64, error) {
		_ = os.Remove(dst)
		return 0, fmt.Errorf("%w: %s %s: %v", ErrCopyFailed, step, dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return discard("write", err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return discard("sync", err)
	}
	if err := out.Close(); err != nil {
		return discard("close", err)
	}
	return n, nil
}
