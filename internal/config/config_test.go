package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipewatch.yaml")
	if err := os.WriteFile(path, []byte("reference_directory: ./proj\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ReferenceDirectory != "./proj" {
		t.Fatalf("expected the file's value to stick, got %q", cfg.ReferenceDirectory)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("expected the default poll interval to fill in, got %v", cfg.PollInterval)
	}
	if cfg.Backend != BackendJSON {
		t.Fatalf("expected the default backend to fill in, got %q", cfg.Backend)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
