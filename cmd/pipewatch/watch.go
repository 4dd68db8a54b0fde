package main

import (
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pipewatch/internal/tui"
)

func newWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard over the persisted snapshot",
		Long:  "watch polls the persistence backend on a fixed interval and redraws a full-screen report, independent of whether a start process is currently running.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loader, err := loadSnapshotLoader()
			if err != nil {
				return err
			}
			model := tui.NewModel(filepath.Base(cfg.ReferenceDirectory), loader, interval)
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "refresh interval")

	return cmd
}
