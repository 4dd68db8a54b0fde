package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pipewatch/internal/config"
	"pipewatch/internal/pidfile"
)

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Send SIGTERM to a running start process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				if !os.IsNotExist(err) {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = config.Default()
			}
			if err := pidfile.Stop(cfg.PersistentDirectory); err != nil {
				return err
			}
			fmt.Println("stop signal sent")
			return nil
		},
	}
}
