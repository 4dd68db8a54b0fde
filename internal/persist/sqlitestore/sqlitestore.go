// Package sqlitestore is the optional SQLite-backed persistence variant
// (config: persistent_backend: sqlite). It stores the same snapshot the
// JSON backend does, in two tables, plus an append-only build_history
// table the JSON backend has no room for — one row per completed pipe
// execution (tool, paths, duration, success), giving the HTTP status
// surface's /history endpoint something to serve. Uses the pack's
// pure-Go modernc.org/sqlite driver, so no cgo toolchain is required.
package sqlitestore

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"pipewatch/internal/persist"
)

var _ persist.HistoryStore = (*Store)(nil)

// Store persists to a single SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and ensures
// its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS paths (
			path TEXT PRIMARY KEY,
			changed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pipes (
			tool TEXT NOT NULL,
			path_in TEXT NOT NULL,
			path_out TEXT NOT NULL,
			settings TEXT NOT NULL,
			paths TEXT NOT NULL,
			PRIMARY KEY (tool, path_in, path_out)
		)`,
		`CREATE TABLE IF NOT EXISTS build_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tool TEXT NOT NULL,
			path_in TEXT NOT NULL,
			path_out TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			success INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			finished_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save replaces the persisted path and pipe tables within one
// transaction — the SQL analogue of the JSON backend's
// write-temp-then-rename atomicity.
func (s *Store) Save(snapshot persist.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM paths`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM pipes`); err != nil {
		return err
	}
	for _, p := range snapshot.Paths {
		if _, err := tx.Exec(`INSERT INTO paths (path, changed) VALUES (?, ?)`, p.Path, p.Changed); err != nil {
			return err
		}
	}
	for _, p := range snapshot.Pipes {
		pathsJSON, err := json.Marshal(p.Paths)
		if err != nil {
			return err
		}
		settings := p.Settings
		if len(settings) == 0 {
			settings = []byte("null")
		}
		if _, err := tx.Exec(
			`INSERT INTO pipes (tool, path_in, path_out, settings, paths) VALUES (?, ?, ?, ?, ?)`,
			p.Tool, p.PathIn, p.PathOut, string(settings), string(pathsJSON),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load reconstructs the snapshot from the database. An empty database
// (no rows in either table) returns (nil, nil), the same "cold start"
// signal the JSON backend gives for a missing file.
func (s *Store) Load() (*persist.Snapshot, error) {
	var snap persist.Snapshot

	rows, err := s.db.Query(`SELECT path, changed FROM paths`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p persist.PathEntry
		if err := rows.Scan(&p.Path, &p.Changed); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Paths = append(snap.Paths, p)
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT tool, path_in, path_out, settings, paths FROM pipes`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p persist.PipeEntry
		var settings, pathsJSON string
		if err := rows.Scan(&p.Tool, &p.PathIn, &p.PathOut, &settings, &pathsJSON); err != nil {
			rows.Close()
			return nil, err
		}
		p.Settings = json.RawMessage(settings)
		if err := json.Unmarshal([]byte(pathsJSON), &p.Paths); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Pipes = append(snap.Pipes, p)
	}
	rows.Close()

	if len(snap.Paths) == 0 && len(snap.Pipes) == 0 {
		return nil, nil
	}
	return &snap, nil
}

// AppendHistory records one completed pipe execution.
func (s *Store) AppendHistory(e persist.HistoryEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO build_history (tool, path_in, path_out, duration_ms, success, error, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Tool, e.PathIn, e.PathOut, e.Duration.Milliseconds(), boolToInt(e.Success), e.Error, e.FinishedAt.UnixMilli(),
	)
	return err
}

// RecentHistory returns up to limit most recent build history entries,
// newest first.
func (s *Store) RecentHistory(limit int) ([]persist.HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT tool, path_in, path_out, duration_ms, success, error, finished_at
		 FROM build_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []persist.HistoryEntry
	for rows.Next() {
		var e persist.HistoryEntry
		var durMS, finishedMS int64
		var success int
		if err := rows.Scan(&e.Tool, &e.PathIn, &e.PathOut, &durMS, &success, &e.Error, &finishedMS); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(durMS) * time.Millisecond
		e.Success = success != 0
		e.FinishedAt = time.UnixMilli(finishedMS)
		out = append(out, e)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
