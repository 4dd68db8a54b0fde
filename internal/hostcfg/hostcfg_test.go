package hostcfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pipewatch/internal/config"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipewatch.yaml")
	if err := os.WriteFile(path, []byte("reference_directory: .\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded := make(chan config.Config, 1)
	w, err := New(path, func(cfg config.Config) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("reference_directory: ./changed\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.ReferenceDirectory != "./changed" {
			t.Fatalf("expected the reloaded config to reflect the edit, got %q", cfg.ReferenceDirectory)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a reload notification after the file changed")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipewatch.yaml")
	if err := os.WriteFile(path, []byte("reference_directory: .\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded := make(chan config.Config, 1)
	w, err := New(path, func(cfg config.Config) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Close()

	other := filepath.Join(dir, "unrelated.txt")
	if err := os.WriteFile(other, []byte("noise"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case cfg := <-reloaded:
		t.Fatalf("expected no reload from an unrelated file, got %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}
}
