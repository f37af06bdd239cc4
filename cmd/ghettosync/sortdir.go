package main

import (
	"github.com/spf13/cobra"
	"github.com/vmunix/ghettosync/internal/sortdir"
)

var sortdirCmd = &cobra.Command{
	Use:   "sortdir PATH",
	Short: "Rewrite directory entry order so players list subdirectories sorted",
	Long: `Rewrite directory entry order so players list subdirectories sorted.

Devices that read FAT directory tables in on-disk order show folders in the
order they were created. sortdir moves every subdirectory of PATH out to a
scratch directory and back in name order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sortdir.Sort(args[0], logger)
	},
}

func init() {
	rootCmd.AddCommand(sortdirCmd)
}
