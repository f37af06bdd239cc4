// internal/history/errors.go
package history

import "errors"

var (
	// ErrRunNotFound indicates the run record doesn't exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunFinished indicates an operation was recorded against a finished run.
	ErrRunFinished = errors.New("run already finished")
)
