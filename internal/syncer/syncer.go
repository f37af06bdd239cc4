// Package syncer applies a reconciled plan to the destination tree:
// removing leaves (and parents left empty) and copying leaves in.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vmunix/ghettosync/internal/source"
)

// DefaultExtensions are the media file types copied into the destination.
var DefaultExtensions = []string{".flac", ".m4a", ".mp3", ".mp4", ".opus", ".wma"}

// DefaultHiddenPrefix marks filesystem metadata artifacts (AppleDouble files).
const DefaultHiddenPrefix = "._"

// Op names a journaled leaf operation.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Status is the state of a journaled operation.
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Journal records leaf operations as they happen.
type Journal interface {
	Record(ctx context.Context, op Op, relPath string, status Status, detail string) error
}

// Config for the executor.
type Config struct {
	Root         string   // destination root on the local filesystem
	Extensions   []string // allow-list, matched case-insensitively
	HiddenPrefix string   // file names with this prefix are never copied; defaults to "._"
	Exclude      []string // doublestar patterns; matching file names are never copied
}

// Result summarizes one batch.
type Result struct {
	Done   []string // relpaths fully processed
	Files  int
	Bytes  int64
	Errors []error
}

// Err joins the per-leaf errors, nil when the batch was clean.
func (r *Result) Err() error {
	return errors.Join(r.Errors...)
}

// Executor removes and adds leaf directories at the destination.
type Executor struct {
	src          source.Source
	root         string
	extensions   map[string]struct{}
	hiddenPrefix string
	exclude      []string
	journal      Journal // nil disables journaling
	log          *slog.Logger
}

// New creates an executor copying from src into cfg.Root.
func New(src source.Source, cfg Config, journal Journal, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	hidden := cfg.HiddenPrefix
	if hidden == "" {
		hidden = DefaultHiddenPrefix
	}

	return &Executor{
		src:          src,
		root:         filepath.Clean(cfg.Root),
		extensions:   allowed,
		hiddenPrefix: hidden,
		exclude:      cfg.Exclude,
		journal:      journal,
		log:          log.With("component", "syncer"),
	}
}

// Wanted reports whether a file name passes the extension allow-list, the
// hidden-prefix exclusion and the exclude patterns.
func (e *Executor) Wanted(name string) bool {
	if strings.HasPrefix(name, e.hiddenPrefix) {
		return false
	}
	if _, ok := e.extensions[strings.ToLower(path.Ext(name))]; !ok {
		return false
	}
	for _, pattern := range e.exclude {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			e.log.Debug("bad exclude pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return false
		}
	}
	return true
}

// Remove deletes each leaf and then its top-level parent if that is left
// empty. A failing path is reported and the batch continues.
func (e *Executor) Remove(ctx context.Context, relPaths []string) *Result {
	res := &Result{}
	for _, rel := range relPaths {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, err)
			break
		}

		if err := e.removeLeaf(ctx, rel); err != nil {
			e.log.Error("remove failed", "path", rel, "error", err)
			e.record(ctx, OpRemove, rel, StatusFailed, err.Error())
			res.Errors = append(res.Errors, fmt.Errorf("remove %s: %w", rel, err))
			continue
		}
		e.record(ctx, OpRemove, rel, StatusCompleted, "")
		res.Done = append(res.Done, rel)
	}
	return res
}

func (e *Executor) removeLeaf(ctx context.Context, rel string) error {
	target, err := leafPath(e.root, rel)
	if err != nil {
		return err
	}
	e.record(ctx, OpRemove, rel, StatusStarted, "")

	e.log.Info("removing", "path", rel)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("delete leaf: %w", err)
	}

	parent := filepath.Dir(target)
	if ValidatePath(parent, e.root) != nil {
		return nil
	}
	entries, err := os.ReadDir(parent)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("list parent: %w", err)
	}
	if len(entries) == 0 {
		e.log.Debug("removing empty parent", "path", filepath.Base(parent))
		if err := os.Remove(parent); err != nil {
			return fmt.Errorf("delete empty parent: %w", err)
		}
	}
	return nil
}

// Add creates each leaf at the destination and copies its allow-listed
// files from the source in name order. An unreadable leaf or a failed
// file copy is logged and the batch continues.
func (e *Executor) Add(ctx context.Context, relPaths []string) *Result {
	res := &Result{}
	for _, rel := range relPaths {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, err)
			break
		}

		files, bytes, errs := e.addLeaf(ctx, rel)
		res.Files += files
		res.Bytes += bytes
		if len(errs) > 0 {
			joined := errors.Join(errs...)
			e.record(ctx, OpAdd, rel, StatusFailed, joined.Error())
			for _, err := range errs {
				res.Errors = append(res.Errors, fmt.Errorf("add %s: %w", rel, err))
			}
			continue
		}
		e.record(ctx, OpAdd, rel, StatusCompleted, fmt.Sprintf("%d files", files))
		res.Done = append(res.Done, rel)
	}
	return res
}

func (e *Executor) addLeaf(ctx context.Context, rel string) (int, int64, []error) {
	target, err := leafPath(e.root, rel)
	if err != nil {
		e.log.Error("add refused", "path", rel, "error", err)
		return 0, 0, []error{err}
	}

	entries, err := e.src.ReadDir(ctx, rel)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, 0, []error{ctxErr}
		}
		e.log.Warn("skipping unreadable leaf", "path", rel, "error", err)
		return 0, 0, []error{fmt.Errorf("%w: %w", ErrLeafUnreadable, err)}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir || !e.Wanted(entry.Name) {
			continue
		}
		names = append(names, entry.Name)
	}
	sort.Strings(names)

	e.record(ctx, OpAdd, rel, StatusStarted, "")
	e.log.Info("adding", "path", rel, "files", len(names))
	if err := os.MkdirAll(target, 0755); err != nil {
		return 0, 0, []error{fmt.Errorf("create leaf: %w", err)}
	}

	var (
		copied int
		total  int64
		errs   []error
	)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		e.log.Debug("copying", "path", rel, "file", name)
		n, err := CopyStream(ctx, e.src, source.Join(rel, name), filepath.Join(target, name))
		if err != nil {
			e.log.Warn("copy failed", "path", rel, "file", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		copied++
		total += n
	}
	return copied, total, errs
}

func (e *Executor) record(ctx context.Context, op Op, rel string, status Status, detail string) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Record(ctx, op, rel, status, detail); err != nil {
		e.log.Warn("journal write failed", "op", op, "path", rel, "error", err)
	}
}
