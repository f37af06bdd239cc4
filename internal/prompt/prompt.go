// Package prompt asks the user to confirm destructive operations.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Line reads an answer line from a reader. Only "y" and "yes"
// (any case) confirm; end of input declines.
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine creates a line-based confirmer.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

// Confirm prints message and waits for an answer.
func (l *Line) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, _ = fmt.Fprintf(l.out, "%s [y/N]: ", message)
	input, err := l.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	if err == io.EOF && input == "" {
		_, _ = fmt.Fprintln(l.out)
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Interactive renders a terminal confirmation form.
type Interactive struct{}

// Confirm shows message with Yes/No choices. Aborting the form (ctrl-c)
// counts as No.
func (Interactive) Confirm(ctx context.Context, message string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation form: %w", err)
	}
	return ok, nil
}

// New picks the interactive form when in is a terminal, and the line
// prompt otherwise (pipes, tests, CI).
func New(in io.Reader, out io.Writer) Confirmer {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return Interactive{}
	}
	return NewLine(in, out)
}
