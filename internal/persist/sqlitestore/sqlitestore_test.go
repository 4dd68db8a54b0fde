package sqlitestore

import (
	"path/filepath"
	"testing"
	"time"

	"pipewatch/internal/persist"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "pipewatch.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadEmptyDatabaseReturnsNilSnapshot(t *testing.T) {
	s := openTemp(t)
	snap, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected a nil snapshot for an empty database, got %+v", snap)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	s := openTemp(t)
	want := persist.Snapshot{
		Paths: []persist.PathEntry{{Path: "a.txt", Changed: 99}},
		Pipes: []persist.PipeEntry{{Tool: "smartcopy", PathIn: "a.txt", PathOut: "b.txt", Paths: []string{"a.txt"}}},
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got.Paths) != 1 || got.Paths[0].Changed != 99 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if len(got.Pipes) != 1 || got.Pipes[0].Paths[0] != "a.txt" {
		t.Fatalf("unexpected pipes: %+v", got.Pipes)
	}
}

func TestSaveReplacesPriorRows(t *testing.T) {
	s := openTemp(t)
	if err := s.Save(persist.Snapshot{Paths: []persist.PathEntry{{Path: "old.txt"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Save(persist.Snapshot{Paths: []persist.PathEntry{{Path: "new.txt"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Paths) != 1 || got.Paths[0].Path != "new.txt" {
		t.Fatalf("expected old rows to be replaced, got %+v", got.Paths)
	}
}

func TestAppendAndRecentHistory(t *testing.T) {
	s := openTemp(t)
	base := time.Now()
	for i := 0; i < 3; i++ {
		e := persist.HistoryEntry{
			Tool:       "smartcopy",
			PathIn:     "a.txt",
			PathOut:    "b.txt",
			Duration:   time.Duration(i) * time.Millisecond,
			Success:    i != 1,
			FinishedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.AppendHistory(e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	recent, err := s.RecentHistory(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Duration != 2*time.Millisecond {
		t.Fatalf("expected newest-first ordering, got %+v", recent)
	}
	if recent[1].Success {
		t.Fatalf("expected the middle entry's failure to round-trip")
	}
}
