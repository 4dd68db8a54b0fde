package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pipewatch/internal/persist"
)

func TestRenderNilSnapshot(t *testing.T) {
	out := Render("myproj", nil)
	if !strings.Contains(out, "no persisted state yet") {
		t.Fatalf("expected a cold-start message, got %q", out)
	}
}

func TestRenderListsPathsAndPipes(t *testing.T) {
	snap := &persist.Snapshot{
		Paths: []persist.PathEntry{{Path: "a.txt", Changed: time.Now().UnixMilli()}},
		Pipes: []persist.PipeEntry{{Tool: "smartcopy", PathIn: "a.txt", PathOut: "b.txt"}},
	}
	out := Render("myproj", snap)
	if !strings.Contains(out, "a.txt") || !strings.Contains(out, "b.txt") {
		t.Fatalf("expected the report to mention both paths, got %q", out)
	}
	if !strings.Contains(out, "smartcopy") {
		t.Fatalf("expected the report to mention the tool name, got %q", out)
	}
}

func TestRenderTruncatesLongLists(t *testing.T) {
	var paths []persist.PathEntry
	for i := 0; i < 15; i++ {
		paths = append(paths, persist.PathEntry{Path: string(rune('a' + i))})
	}
	out := Render("myproj", &persist.Snapshot{Paths: paths})
	if !strings.Contains(out, "more") {
		t.Fatalf("expected a truncation marker for >10 paths, got %q", out)
	}
}

func TestModelUpdateOnSnapMsgStoresResult(t *testing.T) {
	m := NewModel("proj", func() (*persist.Snapshot, error) { return nil, nil }, time.Second)

	next, _ := m.Update(snapMsg{snap: &persist.Snapshot{Paths: []persist.PathEntry{{Path: "x"}}}})
	m = next.(Model)
	if m.snap == nil || len(m.snap.Paths) != 1 {
		t.Fatalf("expected the snapshot to be stored, got %+v", m.snap)
	}

	next, _ = m.Update(snapMsg{err: errors.New("boom")})
	m = next.(Model)
	if m.err == nil {
		t.Fatalf("expected the error to be stored")
	}
	if !strings.Contains(m.View(), "boom") {
		t.Fatalf("expected the view to surface the error, got %q", m.View())
	}
}

func TestModelUpdateQuitsOnQ(t *testing.T) {
	m := NewModel("proj", func() (*persist.Snapshot, error) { return nil, nil }, time.Second)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
}
