package main

import (
	"path/filepath"
	"testing"

	"pipewatch/internal/config"
	"pipewatch/internal/persist/jsonstore"
	"pipewatch/internal/persist/sqlitestore"
)

func TestOpenStoreJSONBackend(t *testing.T) {
	cfg := config.Default()
	cfg.PersistentDirectory = t.TempDir()

	store, err := openStore(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*jsonstore.Store); !ok {
		t.Fatalf("expected a *jsonstore.Store, got %T", store)
	}
}

func TestOpenStoreSQLiteBackend(t *testing.T) {
	cfg := config.Default()
	cfg.PersistentDirectory = t.TempDir()
	cfg.Backend = config.BackendSQLite

	store, err := openStore(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*sqlitestore.Store); !ok {
		t.Fatalf("expected a *sqlitestore.Store, got %T", store)
	}
}

func TestBuildMonitorAppliesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.PersistentDirectory = t.TempDir()
	cfg.ReferenceDirectory = filepath.Join(t.TempDir(), "proj")
	cfg.Workers = 3

	mon, err := buildMonitor(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mon.IsStopped() {
		t.Fatalf("expected a freshly built monitor to be stopped")
	}

	if err := mon.AddBaseHubFile("root.hub.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info := mon.Snapshot()
	want := filepath.Join(cfg.ReferenceDirectory, "root.hub.json")
	if len(info.Hubs) != 1 || info.Hubs[0] != want {
		t.Fatalf("expected the hub to resolve under the configured reference directory %q, got %v", want, info.Hubs)
	}
}
