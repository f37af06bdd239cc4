package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vmunix/ghettosync/internal/history"
	"github.com/vmunix/ghettosync/internal/syncer"
)

var historyCmd = &cobra.Command{
	Use:   "history [RUN]",
	Short: "Show recent sync runs, or the operations of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "l", 20, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in config")
	}
	if _, err := os.Stat(cfg.History.Path); err != nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
		return nil
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if len(args) == 1 {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		return showRun(cmd, store, id)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTARTED\tFINISHED\tADDED\tREMOVED\tFAILED\tDESTINATION")
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, formatTime(&r.StartedAt), formatTime(r.FinishedAt), r.Added, r.Removed, r.Failed, r.Destination)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, store *history.Store, id int64) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	ops, err := store.Operations(cmd.Context(), id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Run %d: %s -> %s\n", run.ID, run.Source, run.Destination)
	_, _ = fmt.Fprintf(out, "Started %s, finished %s\n\n", formatTime(&run.StartedAt), formatTime(run.FinishedAt))

	for _, op := range ops {
		c := addColor
		if op.Op == syncer.OpRemove {
			c = removeColor
		}
		if op.Status == syncer.StatusFailed {
			c = warnColor
		}
		line := fmt.Sprintf("  %-6s %-9s %s", op.Op, op.Status, op.RelPath)
		if op.Detail != "" {
			line += " (" + op.Detail + ")"
		}
		_, _ = c.Fprintln(out, line)
	}
	return nil
}
