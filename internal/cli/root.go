// Package cli implements the upcoming command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tshepom/upcoming/internal/config"
	"github.com/tshepom/upcoming/storage/sqlite"
)

// RootCmd is the entry point of the CLI.
var RootCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Manage recurring events and query their upcoming occurrences",
}

var configPath string

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
}

// loadConfig reads the config and builds the process logger from it.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

// openStore opens the configured SQLite store.
func openStore() (*sqlite.Store, config.Config, *slog.Logger, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, cfg, nil, err
	}
	store, err := sqlite.New(cfg.StorePath)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("open store %s: %w", cfg.StorePath, err)
	}
	return store, cfg, logger, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
