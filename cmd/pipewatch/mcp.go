package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pipewatch/internal/config"
	"pipewatch/internal/host"
	"pipewatch/internal/logx"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the coordinator and serve it as an MCP tool surface over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP()
		},
	}
}

func runMCP() error {
	log := logx.New("cli")

	cfg, err := config.Load(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load config: %w", err)
	}
	if os.IsNotExist(err) {
		cfg = config.Default()
	}

	mon, err := buildMonitor(cfg)
	if err != nil {
		return err
	}
	if err := mon.Begin(); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, hub := range cfg.BaseHubFiles {
		if err := mon.AddBaseHubFile(hub); err != nil {
			log.Warn("add base hub %s: %v", hub, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	srv := host.NewMCPServer(mon, mon.Version)
	err = srv.Run(ctx)
	mon.EndAndWait()
	return err
}
