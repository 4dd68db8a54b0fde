package monitor

import (
	"time"

	"pipewatch/internal/graph"
	"pipewatch/internal/persist"
)

// loadFromPersistent restores monitored paths and settled pipes from the
// last snapshot. Restored pipes carry hub_dep = NoID until a hub reparse
// reclaims them — exactly the orphan-pending-reclaim state a mid-session
// orphan would be in, so no special-casing is needed in the main loop.
func (m *Monitor) loadFromPersistent() error {
	snap, err := m.persist.Load()
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range snap.Paths {
		t := time.UnixMilli(p.Changed)
		m.store.FindOrAddMonitoredPath(p.Path, &t)
	}

	for _, pe := range snap.Pipes {
		id, _ := m.store.FindOrAddPipe(graph.NoID, graph.NoID, pe.Tool, pe.PathIn, pe.PathOut, pe.Settings)
		for _, path := range pe.Paths {
			pathID := m.store.FindOrAddMonitoredPath(path, nil)
			m.store.AddPipePathDep(id, pathID)
		}
	}

	m.log.Info("loaded %d paths, %d pipes from persistent state", len(snap.Paths), len(snap.Pipes))
	return nil
}

// saveToPersistent writes the current settled state. Orphaned pipes and
// any pipe still in flight (dirty, outbox, or pending) are skipped per
// §4.H — their state is inherently transient and would reload as
// dangling or incomplete entries nothing ever reclaims.
func (m *Monitor) saveToPersistent() error {
	snap := persist.Snapshot{}

	for _, p := range m.store.Paths {
		snap.Paths = append(snap.Paths, persist.PathEntry{
			Path:    p.Path,
			Changed: p.LastUpdate.UnixMilli(),
		})
	}

	for _, p := range m.store.Pipes {
		if p.HubDep == graph.NoID {
			continue
		}
		if m.store.DirtyPipes.Contains(p.ID) || m.store.OutboxPipes.Contains(p.ID) || m.store.PendingPipes.Contains(p.ID) {
			continue
		}
		var paths []string
		for _, pid := range p.PathDeps {
			if mp, ok := m.store.Paths[pid]; ok {
				paths = append(paths, mp.Path)
			}
		}
		snap.Pipes = append(snap.Pipes, persist.PipeEntry{
			Tool:     p.Tool,
			PathIn:   p.BaseIn,
			PathOut:  p.BaseOut,
			Settings: append([]byte(nil), p.Settings...),
			Paths:    paths,
		})
	}

	return m.persist.Save(snap)
}
