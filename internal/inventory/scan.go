// internal/inventory/scan.go
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vmunix/ghettosync/internal/source"
	"golang.org/x/sync/errgroup"
)

// Scanner walks a source two levels deep.
type Scanner struct {
	// Workers bounds how many leaves are sized concurrently.
	// Values below 2 size leaves one at a time.
	Workers int

	// Strict aborts the scan on the first unreadable directory instead of
	// skipping it with a warning.
	Strict bool

	log *slog.Logger
}

// NewScanner creates a scanner.
func NewScanner(workers int, strict bool, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{Workers: workers, Strict: strict, log: log}
}

// Scan lists every top-level/leaf directory pair under src and sizes each
// leaf from its direct files. Subdirectories below a leaf are ignored.
func (s *Scanner) Scan(ctx context.Context, src source.Source) (*Inventory, error) {
	tops, err := src.ReadDir(ctx, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src.Identity(), err)
	}
	sortEntries(tops)

	var leaves []string
	for _, top := range tops {
		if !top.IsDir {
			continue
		}

		children, err := src.ReadDir(ctx, top.Name)
		if err != nil {
			if err := s.unreadable(ctx, top.Name, err); err != nil {
				return nil, err
			}
			continue
		}
		sortEntries(children)

		for _, leaf := range children {
			if !leaf.IsDir {
				continue
			}
			leaves = append(leaves, source.Join(top.Name, leaf.Name))
		}
	}

	sizes, err := s.sizeAll(ctx, src, leaves)
	if err != nil {
		return nil, err
	}

	inv := &Inventory{Source: src.Identity(), Entries: make([]Entry, 0, len(leaves))}
	for i, rel := range leaves {
		if sizes[i] < 0 {
			continue
		}
		inv.Entries = append(inv.Entries, Entry{RelPath: rel, SizeMB: sizes[i]})
	}

	s.log.Info("scan complete",
		"source", inv.Source,
		"leaves", len(inv.Entries),
		"skipped", len(leaves)-len(inv.Entries),
		"total_mb", inv.TotalMB())
	return inv, nil
}

// sizeAll sizes every leaf. Skipped leaves get -1. The result is indexed
// like leaves, so worker scheduling never affects ordering.
func (s *Scanner) sizeAll(ctx context.Context, src source.Source, leaves []string) ([]int64, error) {
	sizes := make([]int64, len(leaves))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Workers, 1))

	for i, rel := range leaves {
		g.Go(func() error {
			mb, err := leafSize(gctx, src, rel)
			if err != nil {
				if err := s.unreadable(gctx, rel, err); err != nil {
					return err
				}
				sizes[i] = -1
				return nil
			}
			sizes[i] = mb
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sizes, nil
}

// unreadable applies the skip-or-abort policy for a directory that could
// not be listed. It returns nil when the directory should be skipped.
func (s *Scanner) unreadable(ctx context.Context, rel string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if s.Strict {
		return fmt.Errorf("%w: %s: %w", ErrLeafUnreadable, rel, err)
	}
	s.log.Warn("skipping unreadable directory", "path", rel, "error", err)
	return nil
}

// leafSize sums whole megabytes per direct file, flooring each file.
func leafSize(ctx context.Context, src source.Source, rel string) (int64, error) {
	entries, err := src.ReadDir(ctx, rel)
	if err != nil {
		return 0, err
	}

	var mb int64
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		mb += e.Size / BytesPerMB
	}
	return mb, nil
}

func sortEntries(entries []source.Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}
