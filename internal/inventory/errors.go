// Package inventory scans a two-level source tree into an ordered
// catalog of leaf directories and caches the result between runs.
package inventory

import "errors"

var (
	// ErrSourceUnavailable indicates the source root could not be listed.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrCacheCorrupt indicates the cache file exists but cannot be parsed.
	// Callers treat this the same as a missing cache.
	ErrCacheCorrupt = errors.New("inventory cache corrupt")

	// ErrLeafUnreadable indicates a directory inside the source could not be listed.
	ErrLeafUnreadable = errors.New("source directory unreadable")
)
