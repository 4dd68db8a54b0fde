package monitor

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"pipewatch/internal/graph"
	"pipewatch/internal/interp"
	"pipewatch/internal/persist"
	"pipewatch/internal/wildcard"
	"pipewatch/internal/wrangler"
)

func (m *Monitor) loop() {
	defer m.loopWG.Done()

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.doneCh:
			return
		default:
		}

		m.runCycle()

		select {
		case <-m.doneCh:
			return
		case <-ticker.C:
		}
	}
}

// runCycle runs one full iteration of the coordinator loop, holding
// G.lock for its entire body per §5's lock-order rule. The lock is not
// dropped anywhere in the cycle: flushOutbox submits to the wrangler
// with G.lock still held (see the note on flushOutbox).
func (m *Monitor) runCycle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	m.stepSuspectPaths(now)
	m.stepSuspectWildcards()

	m.store.FutureDirtyHubs.MoveAllTo(m.store.DirtyHubs)
	m.store.FutureDirtyPipes.MoveAllTo(m.store.DirtyPipes)
	m.store.FutureDirtyPipeWildcards.MoveAllTo(m.store.DirtyPipeWildcards)

	m.stepDirtyHubs(now)
	m.store.CleanupOrphanHubs()
	m.stepDirtyPipeWildcards()
	m.stepDirtyPipes(now)
	m.flushOutbox()
	m.drainInbox(now)

	if m.savePending && m.persist != nil {
		if err := m.saveToPersistent(); err != nil {
			m.log.Error("save failed: %v", err)
		}
		m.savePending = false
	}
}

// stepSuspectPaths implements §4.G step 1.
func (m *Monitor) stepSuspectPaths(now time.Time) {
	m.store.FutureSuspectPaths.MoveAllTo(m.store.SuspectPaths)
	pending := m.store.SuspectPaths.DrainAll()

	for _, id := range pending {
		p, ok := m.store.Paths[id]
		if !ok {
			continue
		}
		if now.Before(p.Timeout) {
			m.store.FutureSuspectPaths.Add(id)
			continue
		}

		if !m.probe.Exists(p.Path) {
			p.LastUpdate = time.Time{}
			p.Timeout = now.Add(pathTimeout)
			if !m.store.PathHasUsers(id) {
				m.store.ErasePathIfUnused(id)
				continue
			}
			m.store.FutureSuspectPaths.Add(id)
			continue
		}

		t, err := m.probe.LastWriteTime(p.Path)
		if err != nil {
			p.Timeout = now.Add(pathTimeout)
			m.store.FutureSuspectPaths.Add(id)
			continue
		}

		if !withinEpsilon(t, p.LastUpdate) {
			hubs, pipes := m.store.DependantHubsAndPipes(id)
			for _, hid := range hubs {
				m.store.FutureDirtyHubs.Add(hid)
			}
			for _, pid := range pipes {
				m.store.FutureDirtyPipes.Add(pid)
			}
			p.LastUpdate = t
		}
		m.store.FutureSuspectPaths.Add(id)
	}

	// Debug-grade polling: every monitored path is re-checked every cycle.
	for id := range m.store.Paths {
		m.store.FutureSuspectPaths.Add(id)
	}
}

// stepSuspectWildcards implements §4.G step 2.
func (m *Monitor) stepSuspectWildcards() {
	m.store.FutureSuspectWildcards.MoveAllTo(m.store.SuspectWildcards)
	pending := m.store.SuspectWildcards.DrainAll()

	readDir := wildcard.ProbeReadDir(m.probe)

	for _, id := range pending {
		w, ok := m.store.Wildcards[id]
		if !ok {
			continue
		}
		matches, err := wildcard.Enumerate(readDir, w.PatternPath, m.ignoreCache)
		if err != nil {
			m.store.FutureSuspectWildcards.Add(id)
			continue
		}

		changed, next := wildcard.HasChanged(m.store.WildcardLastMatch(id), matches)
		m.store.SetWildcardLastMatch(id, next)
		if changed {
			for _, pwID := range m.store.DependantPipeWildcards(id) {
				m.store.FutureDirtyPipeWildcards.Add(pwID)
			}
		}
		m.store.FutureSuspectWildcards.Add(id)
	}

	for id := range m.store.Wildcards {
		m.store.FutureSuspectWildcards.Add(id)
	}
}

// stepDirtyHubs implements §4.G step 4.
func (m *Monitor) stepDirtyHubs(now time.Time) {
	pending := m.store.DirtyHubs.DrainAll()

	for _, id := range pending {
		h, ok := m.store.Hubs[id]
		if !ok {
			continue
		}
		if h.HubDep == graph.NoID {
			m.store.OrphanedDirtyHubs.Add(id)
			continue
		}
		if now.Before(h.Timeout) {
			m.store.FutureDirtyHubs.Add(id)
			continue
		}

		m.store.MakeDependantsOnHubOrphan(id)

		if err := m.reparseHub(id, h); err != nil {
			m.log.Error("hub %s: %v", h.Path, err)
			h.Timeout = now.Add(hubTimeout)
			m.store.FutureDirtyHubs.Add(id)
			for _, pid := range h.PathDeps {
				m.store.FutureSuspectPaths.Add(pid)
			}
		}
	}
}

func (m *Monitor) reparseHub(id graph.ID, h *graph.Hub) error {
	data, err := m.probe.Read(h.Path)
	if err != nil {
		return err
	}
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return err
	}
	ancestors := map[string]bool{h.Path: true}
	return m.processHubGroup(id, h.InputVars.Clone(), root, ancestors)
}

// stepDirtyPipeWildcards implements §4.G step 6.
func (m *Monitor) stepDirtyPipeWildcards() {
	pending := m.store.DirtyPipeWildcards.DrainAll()
	readDir := wildcard.ProbeReadDir(m.probe)

	for _, id := range pending {
		pw, ok := m.store.PipeWilds[id]
		if !ok {
			continue
		}

		matches, err := wildcard.Enumerate(readDir, pw.BaseIn, m.ignoreCache)
		if err != nil {
			m.log.Warn("pipe wildcard %s: %v", pw.BaseIn, err)
			continue
		}

		var settingsDecoded any
		if err := json.Unmarshal(pw.Settings, &settingsDecoded); err != nil {
			m.log.Warn("pipe wildcard %s: bad settings: %v", pw.BaseIn, err)
			continue
		}

		for _, match := range matches {
			local := pw.InputVars.Clone()
			for k, v := range match.Vars {
				local[k] = v
			}

			out, err := interp.Process(pw.BaseOut, local)
			if err != nil {
				m.log.Warn("pipe wildcard %s: %v", pw.BaseIn, err)
				continue
			}
			processedSettings, err := interp.ProcessJSON(settingsDecoded, local)
			if err != nil {
				m.log.Warn("pipe wildcard %s: %v", pw.BaseIn, err)
				continue
			}
			settingsBytes, err := json.Marshal(processedSettings)
			if err != nil {
				continue
			}

			inCanon, err := m.probe.Canonical(match.Path)
			if err != nil {
				continue
			}
			outCanon, err := m.probe.Canonical(out)
			if err != nil {
				continue
			}

			pipeID, created := m.store.FindOrAddPipe(pw.HubDep, pw.WildcardDep, pw.Tool, inCanon, outCanon, settingsBytes)
			if created {
				m.store.DirtyPipes.Add(pipeID)
			}
		}
	}
}

// stepDirtyPipes implements §4.G step 7.
func (m *Monitor) stepDirtyPipes(now time.Time) {
	pending := m.store.DirtyPipes.DrainAll()

	for _, id := range pending {
		p, ok := m.store.Pipes[id]
		if !ok {
			continue
		}
		if p.HubDep == graph.NoID {
			m.store.OrphanedDirtyPipes.Add(id)
			continue
		}
		if now.Before(p.Timeout) {
			m.store.FutureDirtyPipes.Add(id)
			continue
		}
		p.PathDeps = nil
		m.store.OutboxPipes.Add(id)
	}
}

// flushOutbox implements §4.G step 8, including the Windows stale-.exe
// rename special case noted at the end of §4.G.
func (m *Monitor) flushOutbox() {
	ids := m.store.OutboxPipes.DrainAll()
	if len(ids) == 0 {
		return
	}

	var tasks []wrangler.Task
	for _, id := range ids {
		p, ok := m.store.Pipes[id]
		if !ok {
			continue
		}

		if m.cfg.RenameStaleExeOutputs && strings.EqualFold(filepath.Ext(p.BaseOut), ".exe") && m.probe.Exists(p.BaseOut) {
			staleName := filepath.Join(m.persistentDir, filepath.Base(p.BaseOut)+".~old")
			if err := m.probe.Rename(p.BaseOut, staleName); err != nil {
				m.log.Warn("rename stale exe %s: %v", p.BaseOut, err)
			}
		}

		taskID := id
		tasks = append(tasks, wrangler.Task{
			ID:       uint64(taskID),
			Tool:     p.Tool,
			FileIn:   p.BaseIn,
			FileOut:  p.BaseOut,
			Settings: p.Settings,
			Callback: m.receiveTaskResult,
		})
		m.store.PendingPipes.Add(id)
	}

	// Submission touches only the wrangler's own queue lock; G.lock stays
	// held across this call per §5 ("submission itself is quick").
	m.wrangler.Submit(tasks)
}

// receiveTaskResult is the wrangler callback; it only posts to the
// inbox, guarded by its own lock, per the lock-order rule in §5.
func (m *Monitor) receiveTaskResult(r wrangler.Result) {
	m.inboxMu.Lock()
	m.inbox = append(m.inbox, r)
	m.inboxMu.Unlock()
}

// drainInbox implements §4.G step 9.
func (m *Monitor) drainInbox(now time.Time) {
	m.inboxMu.Lock()
	results := m.inbox
	m.inbox = nil
	m.inboxMu.Unlock()

	for _, r := range results {
		id := graph.ID(r.ID)
		p, ok := m.store.Pipes[id]
		if !ok {
			continue
		}

		m.store.PendingPipes.Remove(id)

		if r.Err != nil {
			m.log.Warn("pipe %s -> %s: %v", p.BaseIn, p.BaseOut, r.Err)
			p.Timeout = now.Add(pipeTimeout)
			m.store.DirtyPipes.Add(id)
			for _, pid := range p.PathDeps {
				m.store.FutureSuspectPaths.Add(pid)
			}
			m.recordHistory(p, r, false, now)
			m.savePending = true
			continue
		}

		for _, rf := range r.ReadFiles {
			pathID := m.store.FindOrAddMonitoredPath(rf.Path, &rf.PreviousTime)
			m.store.AddPipePathDep(id, pathID)

			mp := m.store.Paths[pathID]
			if mp != nil && !withinEpsilon(rf.PreviousTime, mp.LastUpdate) {
				m.store.DirtyPipes.Add(id)
			}
		}

		if m.cfg.TrackWrittenFileEdges {
			for _, wf := range r.WrittenFiles {
				m.store.ProducedBy[wf.Path] = id
				for _, consumerID := range m.store.PipesConsumingPath(wf.Path, id) {
					m.store.DirtyPipes.Add(consumerID)
				}
			}
		}

		m.recordHistory(p, r, true, now)
		m.savePending = true
	}
}

// recordHistory appends one build_history row when the persistence
// backend in use supports it (currently only sqlitestore); the JSON
// backend has no room for an append-only log, so this is a no-op there.
func (m *Monitor) recordHistory(p *graph.Pipe, r wrangler.Result, success bool, now time.Time) {
	hs, ok := m.persist.(persist.HistoryStore)
	if !ok {
		return
	}
	errMsg := ""
	if r.Err != nil {
		errMsg = r.Err.Error()
	}
	entry := persist.HistoryEntry{
		Tool:       p.Tool,
		PathIn:     p.BaseIn,
		PathOut:    p.BaseOut,
		Duration:   r.Duration,
		Success:    success,
		Error:      errMsg,
		FinishedAt: now,
	}
	if err := hs.AppendHistory(entry); err != nil {
		m.log.Warn("append history for %s -> %s: %v", p.BaseIn, p.BaseOut, err)
	}
}

func withinEpsilon(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= Epsilon
}
