package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vmunix/ghettosync/internal/config"
	"github.com/vmunix/ghettosync/internal/logging"
)

var version = "dev"

var (
	configPath string
	logLevel   string
)

// Loaded by the root PersistentPreRunE for every command.
var (
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "ghettosync",
	Short: "Sync artist/album folders to a music player",
	Long: `ghettosync - sync artist/album folders to a music player

Scans a music library two levels deep (artist/album), opens the list in
your editor with the albums already on the device checked, and then
copies in what you checked and removes what you unchecked.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: search "+config.EnvVar+", ./ghettosync.toml, XDG, /etc)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("ghettosync {{.Version}}\n")
}

// setup loads configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	// config subcommands validate files themselves
	if cmd.Parent() == configCmd {
		cfg = config.Default()
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
		return nil
	}

	loaded, path, err := config.Resolve(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg = loaded

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}

	l, closer, err := logging.New(logging.Options{
		Level:      level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Stderr:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	logger, logCloser = l, closer
	slog.SetDefault(logger)

	if path != "" {
		logger.Debug("config loaded", "path", path)
	} else {
		logger.Debug("no config file found, using defaults")
	}
	return nil
}
