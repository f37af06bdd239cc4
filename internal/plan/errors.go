// internal/plan/errors.go
package plan

import (
	"errors"
	"fmt"
)

// ErrLineCountMismatch indicates the edited checklist has a different
// number of lines than was rendered.
var ErrLineCountMismatch = errors.New("checklist line count changed")

// LineCountMismatchError reports the rendered and edited line counts.
type LineCountMismatchError struct {
	Rendered int
	Edited   int
}

func (e *LineCountMismatchError) Error() string {
	return fmt.Sprintf("%s: rendered %d lines, got %d", ErrLineCountMismatch, e.Rendered, e.Edited)
}

// Is makes errors.Is(err, ErrLineCountMismatch) match.
func (e *LineCountMismatchError) Is(target error) bool {
	return target == ErrLineCountMismatch
}
