package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pipewatch/internal/config"
)

func newAddHubCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-hub <path>",
		Short: "Add a root hub manifest to the config file",
		Long:  "add-hub appends path to base_hub_files and rewrites the config file. A running start instance picks up the change through its own config file watcher.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddHub(args[0])
		},
	}
}

func runAddHub(path string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Default()
	}

	for _, existing := range cfg.BaseHubFiles {
		if existing == path {
			fmt.Printf("%s is already a base hub file\n", path)
			return nil
		}
	}
	cfg.BaseHubFiles = append(cfg.BaseHubFiles, path)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("added %s to %s\n", path, configPath)
	return nil
}
