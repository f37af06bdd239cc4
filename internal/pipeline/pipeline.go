// Package pipeline runs one review-and-reconcile pass: resolve the
// inventory, probe the destination, let the user edit the checklist, then
// apply the resulting plan.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/vmunix/ghettosync/internal/dest"
	"github.com/vmunix/ghettosync/internal/history"
	"github.com/vmunix/ghettosync/internal/inventory"
	"github.com/vmunix/ghettosync/internal/plan"
	"github.com/vmunix/ghettosync/internal/review"
	"github.com/vmunix/ghettosync/internal/sortdir"
	"github.com/vmunix/ghettosync/internal/source"
	"github.com/vmunix/ghettosync/internal/syncer"
	"github.com/vmunix/ghettosync/pkg/match"
)

// Options for a single run.
type Options struct {
	Source      source.Source
	Destination string

	Cleanup bool   // review only leaves already at the destination
	Match   string // fuzzy filter on artist/album names
	Rescan  bool   // ignore the inventory cache
	DryRun  bool   // stop after computing the plan
	Sort    bool   // re-order directories that received additions

	BufferDir    string // where the review buffer is written; "" = system temp
	Extensions   []string
	HiddenPrefix string
	Exclude      []string
}

// Report describes what a run did.
type Report struct {
	Reviewed int
	Plan     *plan.Plan
	Declined bool // removals were declined at the confirmation prompt
	Removed  []string
	Added    []string
	Files    int
	Bytes    int64
	Failures []error
	RunID    int64 // journal run, 0 when history is disabled
}

// Deps are the collaborators of a pipeline.
type Deps struct {
	Resolver  *inventory.Resolver
	Editor    Editor
	Confirmer Confirmer
	History   *history.Store // nil disables the journal
	Out       io.Writer      // removal listing; defaults to stdout
}

// Pipeline runs sync passes.
type Pipeline struct {
	resolver *inventory.Resolver
	editor   Editor
	confirm  Confirmer
	history  *history.Store
	out      io.Writer
	log      *slog.Logger
}

// New creates a pipeline.
func New(deps Deps, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	return &Pipeline{
		resolver: deps.Resolver,
		editor:   deps.Editor,
		confirm:  deps.Confirmer,
		history:  deps.History,
		out:      out,
		log:      log.With("component", "pipeline"),
	}
}

// Run performs one pass. Errors before the plan is applied (unreachable
// source, malformed or resized checklist) abort with no changes made.
// Per-leaf failures while applying are collected in the report.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	root, err := filepath.Abs(opts.Destination)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}

	inv, err := p.resolver.Resolve(ctx, opts.Source, opts.Rescan)
	if err != nil {
		return nil, err
	}

	existing, err := dest.Probe(root)
	if err != nil {
		return nil, err
	}
	p.log.Debug("destination probed", "root", root, "leaves", existing.Len())

	p.warnIncomplete(ctx, root)

	rows, lines := review.Render(inv, existing, reviewFilter(opts))
	report := &Report{Reviewed: len(rows), Plan: &plan.Plan{}}
	if len(rows) == 0 {
		p.log.Info("nothing to review", "source", inv.Source, "cleanup", opts.Cleanup, "match", opts.Match)
		return report, nil
	}

	marks, err := p.edit(ctx, opts.BufferDir, lines)
	if err != nil {
		return nil, err
	}

	pl, err := plan.Reconcile(review.Paths(rows), marks, existing)
	if err != nil {
		return nil, err
	}
	report.Plan = pl
	p.log.Info("plan ready", "add", len(pl.ToAdd), "remove", len(pl.ToRemove))

	if opts.DryRun || pl.Empty() {
		return report, nil
	}

	var journal syncer.Journal
	var run *history.Journal
	if p.history != nil {
		run, err = p.history.StartRun(ctx, opts.Source.Identity(), root)
		if err != nil {
			p.log.Warn("journal unavailable, continuing without it", "error", err)
		} else {
			journal = run
			report.RunID = run.RunID()
		}
	}

	exec := syncer.New(opts.Source, syncer.Config{
		Root:         root,
		Extensions:   opts.Extensions,
		HiddenPrefix: opts.HiddenPrefix,
		Exclude:      opts.Exclude,
	}, journal, p.log)

	// All removals finish before any addition starts.
	if len(pl.ToRemove) > 0 {
		ok, err := p.confirmRemoval(ctx, root, pl.ToRemove)
		if err != nil {
			p.finish(ctx, run, report)
			return report, err
		}
		if ok {
			res := exec.Remove(ctx, onDisk(pl.ToRemove, existing))
			report.Removed = res.Done
			report.Failures = append(report.Failures, res.Errors...)
		} else {
			p.log.Info("removal declined", "count", len(pl.ToRemove))
			report.Declined = true
		}
	}

	if len(pl.ToAdd) > 0 {
		res := exec.Add(ctx, pl.ToAdd)
		report.Added = res.Done
		report.Files = res.Files
		report.Bytes = res.Bytes
		report.Failures = append(report.Failures, res.Errors...)
	}

	if opts.Sort && len(report.Added) > 0 {
		p.sortAdded(root, report.Added, existing)
	}

	p.finish(ctx, run, report)
	p.log.Info("sync complete",
		"added", len(report.Added),
		"removed", len(report.Removed),
		"files", report.Files,
		"failures", len(report.Failures))
	return report, nil
}

func reviewFilter(opts Options) review.Filter {
	f := review.Filter{Cleanup: opts.Cleanup}
	if m := match.New(opts.Match, 0); !m.Empty() {
		f.Match = m.Matches
	}
	return f
}

// edit writes the checklist, hands it to the editor and parses the result.
func (p *Pipeline) edit(ctx context.Context, dir string, lines []string) ([]bool, error) {
	path, err := review.WriteBuffer(dir, lines)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(path) }()

	p.log.Debug("opening review buffer", "path", path, "lines", len(lines))
	if err := p.editor.Edit(ctx, path); err != nil {
		return nil, fmt.Errorf("review: %w", err)
	}

	edited, err := review.ReadBuffer(path)
	if err != nil {
		return nil, err
	}
	return review.Parse(edited)
}

func (p *Pipeline) confirmRemoval(ctx context.Context, root string, paths []string) (bool, error) {
	header := color.New(color.FgRed, color.Bold)
	_, _ = header.Fprintf(p.out, "The following %d directories will be removed from %s:\n", len(paths), root)
	for _, rel := range paths {
		_, _ = fmt.Fprintf(p.out, "  %s\n", rel)
	}

	ok, err := p.confirm.Confirm(ctx, fmt.Sprintf("Remove %d directories?", len(paths)))
	if err != nil {
		return false, fmt.Errorf("confirm removal: %w", err)
	}
	return ok, nil
}

// onDisk maps relpaths to the spelling found at the destination, which
// may differ in Unicode normalization.
func onDisk(paths []string, existing dest.Set) []string {
	out := make([]string, len(paths))
	for i, rel := range paths {
		if actual, ok := existing.Lookup(rel); ok {
			out[i] = actual
		} else {
			out[i] = rel
		}
	}
	return out
}

func (p *Pipeline) warnIncomplete(ctx context.Context, root string) {
	if p.history == nil {
		return
	}
	ops, err := p.history.Incomplete(ctx, root)
	if err != nil {
		p.log.Warn("could not read journal", "error", err)
		return
	}
	for _, op := range ops {
		p.log.Warn("leaf may be incomplete: an earlier copy was interrupted",
			"path", op.RelPath,
			"run", op.RunID,
			"started", op.CreatedAt)
	}
}

// sortAdded re-orders each top-level directory that received a leaf, and
// the root itself when a new top-level directory appeared.
func (p *Pipeline) sortAdded(root string, added []string, existing dest.Set) {
	knownTops := make(map[string]bool)
	for _, rel := range existing.Paths() {
		if top, _, ok := source.Split(rel); ok {
			knownTops[dest.Normalize(top)] = true
		}
	}

	tops := make(map[string]bool)
	newTop := false
	for _, rel := range added {
		top, _, ok := source.Split(rel)
		if !ok {
			continue
		}
		tops[top] = true
		if !knownTops[dest.Normalize(top)] {
			newTop = true
		}
	}

	var dirs []string
	for top := range tops {
		dirs = append(dirs, filepath.Join(root, top))
	}
	sort.Strings(dirs)
	if newTop {
		dirs = append(dirs, root)
	}

	for _, dir := range dirs {
		if err := sortdir.Sort(dir, p.log); err != nil {
			p.log.Warn("sort failed", "path", dir, "error", err)
		}
	}
}

func (p *Pipeline) finish(ctx context.Context, run *history.Journal, r *Report) {
	if run == nil {
		return
	}
	if err := run.Finish(ctx, len(r.Added), len(r.Removed), len(r.Failures)); err != nil {
		p.log.Warn("could not finish journal run", "error", err)
	}
}
