package review

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultEditor is used when neither configuration nor environment names one.
const DefaultEditor = "vim"

// ResolveEditor picks the editor command: the configured value, then
// $VISUAL, then $EDITOR, then DefaultEditor.
func ResolveEditor(configured string) string {
	for _, candidate := range []string{configured, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return DefaultEditor
}

// ExecEditor runs an external editor on the review buffer and blocks
// until it exits. There is no timeout; the user decides when to return.
type ExecEditor struct {
	// Command may include arguments, e.g. "code --wait".
	Command string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecEditor creates an editor attached to the process terminal.
func NewExecEditor(command string) *ExecEditor {
	return &ExecEditor{
		Command: command,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Edit opens path in the editor.
func (e *ExecEditor) Edit(ctx context.Context, path string) error {
	fields := strings.Fields(e.Command)
	if len(fields) == 0 {
		return ErrNoEditor
	}

	args := append(fields[1:], path)
	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %s: %w", fields[0], err)
	}
	return nil
}
