package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pipewatch/internal/config"
	"pipewatch/internal/fsprobe"
	"pipewatch/internal/hostcfg"
	"pipewatch/internal/host"
	"pipewatch/internal/logx"
	"pipewatch/internal/monitor"
	"pipewatch/internal/persist"
	"pipewatch/internal/persist/jsonstore"
	"pipewatch/internal/persist/sqlitestore"
	"pipewatch/internal/pidfile"
	"pipewatch/internal/toolreg"
	"pipewatch/internal/tools"
)

func newStartCmd() *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the coordinator loop in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(httpAddr)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "override the config file's http_addr")

	return cmd
}

func openStore(cfg config.Config) (persist.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlitestore.Open(cfg.PersistentDirectory + "/pipewatch.db")
	default:
		return jsonstore.New(cfg.PersistentDirectory), nil
	}
}

func buildMonitor(cfg config.Config) (*monitor.Monitor, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open persistence: %w", err)
	}

	reg := toolreg.New()
	tools.Register(reg)

	mcfg := monitor.DefaultConfig()
	mcfg.PollInterval = cfg.PollInterval
	mcfg.MaxWorkers = cfg.Workers
	mcfg.TrackWrittenFileEdges = cfg.TrackWrittenFileEdges

	mon := monitor.New(mcfg, fsprobe.NewOSProbe(), reg, store)
	if err := mon.SetReferenceDirectory(cfg.ReferenceDirectory); err != nil {
		return nil, err
	}
	if err := mon.SetPersistentDirectory(cfg.PersistentDirectory); err != nil {
		return nil, err
	}
	return mon, nil
}

func runStart(httpAddrOverride string) error {
	log := logx.New("cli")

	cfg, err := config.Load(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load config: %w", err)
	}
	if os.IsNotExist(err) {
		log.Warn("no config file at %s, using defaults", configPath)
		cfg = config.Default()
	}

	if pidfile.IsRunning(cfg.PersistentDirectory) {
		return fmt.Errorf("pipewatch already running against %s", cfg.PersistentDirectory)
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

	if err := pidfile.Write(cfg.PersistentDirectory); err != nil {
		log.Warn("pidfile: %v", err)
	}
	defer pidfile.Remove(cfg.PersistentDirectory)

	knownHubs := make(map[string]bool, len(cfg.BaseHubFiles))
	for _, h := range cfg.BaseHubFiles {
		knownHubs[h] = true
	}

	watcher, err := hostcfg.New(configPath, func(newCfg config.Config) {
		for _, hub := range newCfg.BaseHubFiles {
			if knownHubs[hub] {
				continue
			}
			if err := mon.AddBaseHubFile(hub); err != nil {
				log.Warn("add base hub %s: %v", hub, err)
				continue
			}
			knownHubs[hub] = true
		}
	})
	if err != nil {
		log.Warn("config hot-reload disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	addr := cfg.HTTPAddr
	if httpAddrOverride != "" {
		addr = httpAddrOverride
	}
	srv := &http.Server{Addr: addr, Handler: host.NewStatusHandler(mon)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server: %v", err)
		}
	}()
	log.Info("status page on http://%s", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	srv.Close()
	mon.EndAndWait()
	return nil
}
