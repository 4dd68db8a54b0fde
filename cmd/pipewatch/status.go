package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pipewatch/internal/config"
	"pipewatch/internal/persist"
	"pipewatch/internal/persist/jsonstore"
	"pipewatch/internal/persist/sqlitestore"
	"pipewatch/internal/tui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the last persisted snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loader, err := loadSnapshotLoader()
			if err != nil {
				return err
			}
			snap, err := loader()
			if err != nil {
				return err
			}
			fmt.Print(tui.Render(filepath.Base(cfg.ReferenceDirectory), snap))
			return nil
		},
	}
}

// loadSnapshotLoader builds a tui.Loader over whichever persistence
// backend the config file names, for a one-shot read outside the
// coordinator's own process.
func loadSnapshotLoader() (config.Config, tui.Loader, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, nil, fmt.Errorf("load config: %w", err)
		}
		cfg = config.Default()
	}

	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := sqlitestore.Open(filepath.Join(cfg.PersistentDirectory, "pipewatch.db"))
		if err != nil {
			return cfg, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return cfg, func() (*persist.Snapshot, error) { return store.Load() }, nil
	default:
		store := jsonstore.New(cfg.PersistentDirectory)
		return cfg, func() (*persist.Snapshot, error) { return store.Load() }, nil
	}
}
