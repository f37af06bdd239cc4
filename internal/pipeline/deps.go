// internal/pipeline/deps.go
package pipeline

import "context"

// Editor lets the user edit the review buffer at path. It blocks until
// the user is done.
type Editor interface {
	Edit(ctx context.Context, path string) error
}

// Confirmer asks the user a yes/no question before removals run.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}
