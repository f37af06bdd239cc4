// cmd/ghettosync/format.go
package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/vmunix/ghettosync/internal/pipeline"
)

var (
	addColor    = color.New(color.FgGreen)
	removeColor = color.New(color.FgRed)
	warnColor   = color.New(color.FgYellow)
)

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func formatMB(mb int64) string {
	if mb >= 1024 {
		return fmt.Sprintf("%.1f GB", float64(mb)/1024)
	}
	return fmt.Sprintf("%d MB", mb)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// printReport writes the outcome of a sync run.
func printReport(w io.Writer, r *pipeline.Report, dryRun bool) {
	if r.Reviewed == 0 {
		_, _ = fmt.Fprintln(w, "Nothing to review.")
		return
	}
	if r.Plan.Empty() {
		_, _ = fmt.Fprintln(w, "No changes.")
		return
	}

	if dryRun {
		_, _ = fmt.Fprintf(w, "Plan (dry run): %d to add, %d to remove\n", len(r.Plan.ToAdd), len(r.Plan.ToRemove))
		for _, rel := range r.Plan.ToRemove {
			_, _ = removeColor.Fprintf(w, "  - %s\n", rel)
		}
		for _, rel := range r.Plan.ToAdd {
			_, _ = addColor.Fprintf(w, "  + %s\n", rel)
		}
		return
	}

	for _, rel := range r.Removed {
		_, _ = removeColor.Fprintf(w, "  - %s\n", rel)
	}
	for _, rel := range r.Added {
		_, _ = addColor.Fprintf(w, "  + %s\n", rel)
	}
	if r.Declined {
		_, _ = warnColor.Fprintf(w, "Removal of %d directories skipped.\n", len(r.Plan.ToRemove))
	}
	for _, err := range r.Failures {
		_, _ = warnColor.Fprintf(w, "  ! %v\n", err)
	}

	_, _ = fmt.Fprintf(w, "Removed %d, added %d (%d files, %s)",
		len(r.Removed), len(r.Added), r.Files, formatSize(r.Bytes))
	if len(r.Failures) > 0 {
		_, _ = fmt.Fprintf(w, ", %d failed", len(r.Failures))
	}
	_, _ = fmt.Fprintln(w)
}
