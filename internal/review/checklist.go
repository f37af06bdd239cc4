package review

import (
	"fmt"
	"strings"

	"github.com/vmunix/ghettosync/internal/dest"
	"github.com/vmunix/ghettosync/internal/inventory"
)

const (
	markedPrefix   = "[x]"
	unmarkedPrefix = "[ ]"
)

// Row pairs one checklist line with the leaf it stands for.
type Row struct {
	Path   string
	SizeMB int64
	Marked bool // present at the destination when rendered
}

// Filter narrows which inventory entries are rendered.
type Filter struct {
	// Cleanup renders only entries already present at the destination.
	Cleanup bool

	// Match, if set, must return true for an entry to be rendered.
	Match func(relPath string) bool
}

// Render builds the checklist for inv. Rows and lines are index-aligned:
// lines[i] is FormatLine(rows[i]). Marks reflect current destination
// existence.
func Render(inv *inventory.Inventory, existing dest.Set, f Filter) ([]Row, []string) {
	var rows []Row
	var lines []string

	for _, e := range inv.Entries {
		present := existing.Contains(e.RelPath)
		if f.Cleanup && !present {
			continue
		}
		if f.Match != nil && !f.Match(e.RelPath) {
			continue
		}

		row := Row{Path: e.RelPath, SizeMB: e.SizeMB, Marked: present}
		rows = append(rows, row)
		lines = append(lines, FormatLine(row))
	}

	return rows, lines
}

// FormatLine renders a row as "[x] (   120 MB) Artist/Album".
func FormatLine(r Row) string {
	mark := unmarkedPrefix
	if r.Marked {
		mark = markedPrefix
	}
	return fmt.Sprintf("%s (%6d MB) %s", mark, r.SizeMB, r.Path)
}

// Paths returns the relative paths of rows, in order.
func Paths(rows []Row) []string {
	paths := make([]string, len(rows))
	for i, r := range rows {
		paths[i] = r.Path
	}
	return paths
}

// Marks returns the rendered marks of rows, in order.
func Marks(rows []Row) []bool {
	marks := make([]bool, len(rows))
	for i, r := range rows {
		marks[i] = r.Marked
	}
	return marks
}

// Parse reads the mark of each edited line. Every line must start with
// "[ ]" or "[x]"; anything else fails with a *MalformedLineError.
func Parse(lines []string) ([]bool, error) {
	marks := make([]bool, len(lines))
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, markedPrefix):
			marks[i] = true
		case strings.HasPrefix(line, unmarkedPrefix):
			marks[i] = false
		default:
			return nil, &MalformedLineError{Index: i, Line: line}
		}
	}
	return marks, nil
}
