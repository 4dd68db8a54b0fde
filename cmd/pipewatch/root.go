package main

import (
	"github.com/spf13/cobra"
)

var configPath string

// NewRootCmd builds the pipewatch command tree, grounded on runforge's
// internal/cli.NewRootCmd factory-plus-persistent-flags shape.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pipewatch",
		Short:         "Incremental asset pipeline coordinator",
		Long:          "pipewatch watches hub manifests and their dependency paths, re-running pipe tools only on the files that changed.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "pipewatch.yaml", "path to host configuration file")

	root.AddCommand(newStartCmd())
	root.AddCommand(newStopCmd())
	root.AddCommand(newMCPCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newAddHubCmd())

	return root
}
