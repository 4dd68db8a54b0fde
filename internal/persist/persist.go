// Package persist defines the persisted-state snapshot and the Store
// interface both backends (plain JSON and the optional SQLite variant)
// implement.
package persist

import (
	"encoding/json"
	"time"
)

// PathEntry is one monitored path's last-observed mtime, in the
// millis-since-epoch encoding the spec's state.json uses.
type PathEntry struct {
	Path    string `json:"path"`
	Changed int64  `json:"changed"`
}

// PipeEntry is one settled pipe: enough to reconstruct it (orphaned,
// hub_dep = NoID) and its path dependencies on load.
type PipeEntry struct {
	Tool     string          `json:"tool"`
	PathIn   string          `json:"pathIn"`
	PathOut  string          `json:"pathOut"`
	Settings json.RawMessage `json:"settings"`
	Paths    []string        `json:"paths"`
}

// Snapshot is the stable subset of the graph store worth persisting:
// monitored paths and settled (non-transient) pipes.
type Snapshot struct {
	Paths []PathEntry `json:"paths"`
	Pipes []PipeEntry `json:"pipes"`
}

// Store saves and loads a Snapshot. A concurrent reader never sees a
// partially written snapshot; jsonstore's remove-then-rename leaves a
// brief window in which no snapshot file exists.
type Store interface {
	Save(Snapshot) error
	Load() (*Snapshot, error)
}

// HistoryEntry is one completed pipe execution, for backends that keep
// an append-only build log beyond the latest settled snapshot.
type HistoryEntry struct {
	Tool       string
	PathIn     string
	PathOut    string
	Duration   time.Duration
	Success    bool
	Error      string
	FinishedAt time.Time
}

// HistoryStore is implemented by persistence backends that additionally
// record one row per completed pipe execution (currently only
// sqlitestore — the plain JSON backend has no room for it). The
// coordinator and the HTTP status surface type-assert against this
// interface rather than depending on a concrete backend.
type HistoryStore interface {
	AppendHistory(HistoryEntry) error
	RecentHistory(limit int) ([]HistoryEntry, error)
}
