package main

import (
	"os"
	"path/filepath"
	"testing"

	"pipewatch/internal/persist"
	"pipewatch/internal/persist/jsonstore"
)

func TestLoadSnapshotLoaderMissingConfigUsesDefaults(t *testing.T) {
	oldConfigPath := configPath
	defer func() { configPath = oldConfigPath }()
	configPath = filepath.Join(t.TempDir(), "missing.yaml")

	cfg, loader, err := loadSnapshotLoader()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader == nil {
		t.Fatalf("expected a non-nil loader")
	}
	snap, err := loader()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected a nil snapshot for a cold, unconfigured store")
	}
	if cfg.ReferenceDirectory != "." {
		t.Fatalf("expected the default reference directory, got %q", cfg.ReferenceDirectory)
	}
}

func TestLoadSnapshotLoaderReadsPersistedJSON(t *testing.T) {
	oldConfigPath := configPath
	defer func() { configPath = oldConfigPath }()

	dir := t.TempDir()
	persistDir := filepath.Join(dir, "state")
	configPath = filepath.Join(dir, "pipewatch.yaml")
	if err := os.WriteFile(configPath, []byte("persistent_directory: "+persistDir+"\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, loader, err := loadSnapshotLoader()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := jsonstore.New(persistDir)
	if err := store.Save(persist.Snapshot{Paths: []persist.PathEntry{{Path: "a.txt", Changed: 1}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := loader()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap == nil || len(snap.Paths) != 1 {
		t.Fatalf("expected the persisted snapshot to load, got %+v", snap)
	}
}
