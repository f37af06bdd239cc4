// internal/review/buffer.go
package review

import (
	"fmt"
	"os"
	"strings"
)

// WriteBuffer writes lines to a new temporary file in dir (the system
// temp dir if empty) and returns its path. The caller removes it.
func WriteBuffer(dir string, lines []string) (string, error) {
	f, err := os.CreateTemp(dir, "ghettosync-*.txt")
	if err != nil {
		return "", fmt.Errorf("create review buffer: %w", err)
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write review buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close review buffer: %w", err)
	}
	return f.Name(), nil
}

// ReadBuffer reads the edited buffer back as lines. A trailing newline
// does not produce an extra empty line; CRLF endings are accepted.
func ReadBuffer(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read review buffer: %w", err)
	}
	return SplitLines(string(data)), nil
}

// SplitLines splits text into lines the way ReadBuffer does.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
