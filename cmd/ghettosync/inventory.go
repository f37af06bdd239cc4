package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vmunix/ghettosync/internal/source"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory SOURCE",
	Short: "List the albums found under SOURCE",
	Args:  cobra.ExactArgs(1),
	RunE:  runInventory,
}

func init() {
	inventoryCmd.Flags().Bool("rescan", false, "Ignore the inventory cache and rescan SOURCE")
	inventoryCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(inventoryCmd)
}

func runInventory(cmd *cobra.Command, args []string) error {
	rescan, _ := cmd.Flags().GetBool("rescan")
	jsonOut, _ := cmd.Flags().GetBool("json")

	src, err := source.NewLocal(args[0])
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}

	inv, err := newResolver().Resolve(cmd.Context(), src, rescan)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(inv)
	}

	for _, e := range inv.Entries {
		_, _ = fmt.Fprintf(out, "%10s  %s\n", formatMB(e.SizeMB), e.RelPath)
	}
	_, _ = fmt.Fprintf(out, "\n%d albums, %s\n", inv.Len(), formatMB(inv.TotalMB()))
	return nil
}
