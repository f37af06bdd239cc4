package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/ghettosync/internal/source"
)

// Resolve decides whether a cached inventory can be used for the source
// identified by currentSourceID. It returns the cached inventory and true
// only when the cache belongs to that source.
func Resolve(currentSourceID string, cached *Inventory) (*Inventory, bool) {
	if cached == nil || cached.Source != currentSourceID {
		return nil, false
	}
	return cached, true
}

// Resolver produces the inventory for a run, preferring the cache.
type Resolver struct {
	cache   *Cache
	scanner *Scanner
	log     *slog.Logger
}

// NewResolver creates a resolver.
func NewResolver(cache *Cache, scanner *Scanner, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{cache: cache, scanner: scanner, log: log}
}

// Resolve returns the inventory for src. The cache is used when it was
// built from the same source; otherwise src is scanned and the cache
// overwritten before returning. rescan forces a scan.
func (r *Resolver) Resolve(ctx context.Context, src source.Source, rescan bool) (*Inventory, error) {
	id := src.Identity()

	// The source is listed even on a cache hit: a run against an
	// unreachable source must stop before review.
	if _, err := src.ReadDir(ctx, "."); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, id, err)
	}

	if !rescan {
		cached, err := r.cache.Load()
		switch {
		case errors.Is(err, ErrCacheCorrupt):
			r.log.Warn("discarding corrupt inventory cache", "path", r.cache.Path(), "error", err)
		case err != nil:
			r.log.Warn("inventory cache unreadable, rescanning", "path", r.cache.Path(), "error", err)
		}

		if inv, ok := Resolve(id, cached); ok {
			r.log.Debug("using cached inventory", "source", id, "leaves", inv.Len())
			return inv, nil
		}
		if cached != nil {
			r.log.Info("inventory cache is for another source, rescanning",
				"cached_source", cached.Source,
				"source", id)
		}
	}

	inv, err := r.scanner.Scan(ctx, src)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Save(inv); err != nil {
		r.log.Warn("failed to save inventory cache", "path", r.cache.Path(), "error", err)
	}
	return inv, nil
}
