// cmd/ghettosync/sync.go
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmunix/ghettosync/internal/history"
	"github.com/vmunix/ghettosync/internal/inventory"
	"github.com/vmunix/ghettosync/internal/pipeline"
	"github.com/vmunix/ghettosync/internal/prompt"
	"github.com/vmunix/ghettosync/internal/review"
	"github.com/vmunix/ghettosync/internal/source"
)

var errSyncFailures = errors.New("some operations failed")

var syncCmd = &cobra.Command{
	Use:   "sync SOURCE DEST",
	Short: "Review and reconcile DEST against SOURCE",
	Long: `Review and reconcile DEST against SOURCE.

The source inventory (from cache unless --rescan) is written as a checklist
and opened in your editor. Lines marked [x] are albums you want on DEST,
lines marked [ ] are albums you don't. Unmarked albums present at DEST are
removed after confirmation, then marked albums missing from DEST are copied.`,
	Args: cobra.ExactArgs(2),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().Bool("cleanup", false, "Only review albums already on DEST")
	syncCmd.Flags().StringP("match", "m", "", "Only review albums fuzzy-matching this query")
	syncCmd.Flags().Bool("rescan", false, "Ignore the inventory cache and rescan SOURCE")
	syncCmd.Flags().BoolP("dry-run", "n", false, "Print the plan without changing DEST")
	syncCmd.Flags().Bool("sort", false, "Re-order directories that received new albums (FAT devices)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cleanup, _ := cmd.Flags().GetBool("cleanup")
	matchQuery, _ := cmd.Flags().GetString("match")
	rescan, _ := cmd.Flags().GetBool("rescan")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	sortAfter, _ := cmd.Flags().GetBool("sort")

	src, err := source.NewLocal(args[0])
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}

	store := openHistory()
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	p := pipeline.New(pipeline.Deps{
		Resolver:  newResolver(),
		Editor:    review.NewExecEditor(review.ResolveEditor(cfg.Review.Editor)),
		Confirmer: prompt.New(os.Stdin, cmd.OutOrStdout()),
		History:   store,
		Out:       cmd.OutOrStdout(),
	}, logger)

	report, err := p.Run(cmd.Context(), pipeline.Options{
		Source:       src,
		Destination:  args[1],
		Cleanup:      cleanup,
		Match:        matchQuery,
		Rescan:       rescan,
		DryRun:       dryRun,
		Sort:         sortAfter || cfg.Sync.SortAfterAdd,
		BufferDir:    cfg.Review.BufferDir,
		Extensions:   cfg.Sync.Extensions,
		HiddenPrefix: cfg.Sync.HiddenPrefix,
		Exclude:      cfg.Sync.Exclude,
	})
	if report != nil {
		printReport(cmd.OutOrStdout(), report, dryRun)
	}
	if err != nil {
		return err
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("%w: %d", errSyncFailures, len(report.Failures))
	}
	return nil
}

func newResolver() *inventory.Resolver {
	scanner := inventory.NewScanner(cfg.Scan.Workers, cfg.Scan.Strict, logger)
	return inventory.NewResolver(inventory.NewCache(cfg.Cache.Path), scanner, logger)
}

// openHistory opens the journal if enabled. A journal that can't be opened
// is logged and skipped.
func openHistory() *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("history disabled", "path", cfg.History.Path, "error", err)
		return nil
	}
	return store
}
