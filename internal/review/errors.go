// Package review renders the inventory as an editable checklist and
// parses the edited checklist back into marks.
package review

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLine indicates an edited line does not start with "[ ]" or "[x]".
	ErrMalformedLine = errors.New("malformed checklist line")

	// ErrNoEditor indicates no editor command could be resolved.
	ErrNoEditor = errors.New("no editor configured")
)

// MalformedLineError names the offending line. Index is 0-based.
type MalformedLineError struct {
	Index int
	Line  string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s: line %d: %q", ErrMalformedLine, e.Index, e.Line)
}

// Is makes errors.Is(err, ErrMalformedLine) match.
func (e *MalformedLineError) Is(target error) bool {
	return target == ErrMalformedLine
}
