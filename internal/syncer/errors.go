// internal/syncer/errors.go
package syncer

import "errors"

var (
	// ErrPathEscape indicates a relative path would resolve outside the destination root.
	ErrPathEscape = errors.New("path escapes destination root")

	// ErrLeafUnreadable indicates a source leaf directory could not be listed.
	ErrLeafUnreadable = errors.New("source leaf unreadable")

	// ErrCopyFailed indicates the file copy operation failed.
	ErrCopyFailed = errors.New("failed to copy file")
)
