package graph

import (
	"bytes"
	"time"
)

// Store is the plain data container described by the spec's data model.
// It has no goroutines or locks of its own: every mutation comes from the
// coordinator under the coordinator's single lock (see internal/monitor).
type Store struct {
	nextID ID

	Paths     map[ID]*MonitoredPath
	Wildcards map[ID]*MonitoredWildcard
	Hubs      map[ID]*Hub
	PipeWilds map[ID]*PipeWildcard
	Pipes     map[ID]*Pipe

	SuspectPaths, FutureSuspectPaths         *idSet
	SuspectWildcards, FutureSuspectWildcards *idSet

	DirtyHubs, FutureDirtyHubs       *idSet
	PotentiallyOrphanedHubs          *idSet
	OrphanedDirtyHubs                *idSet

	DirtyPipes, FutureDirtyPipes             *idSet
	OrphanedDirtyPipes                       *idSet
	DirtyPipeWildcards, FutureDirtyPipeWildcards *idSet

	OutboxPipes, PendingPipes *idSet

	// ProducedBy maps a path string to the pipe that most recently wrote
	// it, the reverse-index backing the optional written-file
	// producer/consumer dirtying described in SPEC_FULL.md.
	ProducedBy map[string]ID
}

// NewStore builds an empty graph store.
func NewStore() *Store {
	return &Store{
		nextID:    1,
		Paths:     make(map[ID]*MonitoredPath),
		Wildcards: make(map[ID]*MonitoredWildcard),
		Hubs:      make(map[ID]*Hub),
		PipeWilds: make(map[ID]*PipeWildcard),
		Pipes:     make(map[ID]*Pipe),

		SuspectPaths:       newIDSet(),
		FutureSuspectPaths: newIDSet(),

		SuspectWildcards:       newIDSet(),
		FutureSuspectWildcards: newIDSet(),

		DirtyHubs:                newIDSet(),
		FutureDirtyHubs:          newIDSet(),
		PotentiallyOrphanedHubs:  newIDSet(),
		OrphanedDirtyHubs:        newIDSet(),

		DirtyPipes:                 newIDSet(),
		FutureDirtyPipes:           newIDSet(),
		OrphanedDirtyPipes:         newIDSet(),
		DirtyPipeWildcards:         newIDSet(),
		FutureDirtyPipeWildcards:   newIDSet(),

		OutboxPipes:  newIDSet(),
		PendingPipes: newIDSet(),

		ProducedBy: make(map[string]ID),
	}
}

func (s *Store) newID() ID {
	id := s.nextID
	s.nextID++
	if id == NoID || id == RootID {
		id = s.nextID
		s.nextID++
	}
	return id
}

// FindOrAddMonitoredPath interns a path, returning its existing ID on a
// structural hit (linear scan by path — tables are small, see the spec's
// design notes on why this is acceptable). On a miss it inserts a new
// entry seeded with prevUpdate (or the epoch) and marks it suspect.
func (s *Store) FindOrAddMonitoredPath(path string, prevUpdate *time.Time) ID {
	for id, p := range s.Paths {
		if p.Path == path {
			return id
		}
	}
	id := s.newID()
	last := time.Time{}
	if prevUpdate != nil {
		last = *prevUpdate
	}
	s.Paths[id] = &MonitoredPath{ID: id, Path: path, LastUpdate: last, Timeout: time.Now()}
	s.SuspectPaths.Add(id)
	return id
}

// FindOrAddMonitoredWildcard interns a wildcard pattern.
func (s *Store) FindOrAddMonitoredWildcard(pattern string) ID {
	for id, w := range s.Wildcards {
		if w.PatternPath == pattern {
			return id
		}
	}
	id := s.newID()
	s.Wildcards[id] = &MonitoredWildcard{ID: id, PatternPath: pattern}
	s.SuspectWildcards.Add(id)
	return id
}

// PipesConsumingPath returns every pipe whose base_in equals path,
// excluding producerID itself — the consumers a producer/consumer edge
// (SPEC_FULL.md's written-file tracking) re-dirties once the producing
// pipe's result lands. Linear scan, same tradeoff as the FindOrAdd*
// routines: tables are small and this is off the hot path.
func (s *Store) PipesConsumingPath(path string, producerID ID) []ID {
	var ids []ID
	for id, p := range s.Pipes {
		if id == producerID {
			continue
		}
		if p.BaseIn == path {
			ids = append(ids, id)
		}
	}
	return ids
}

// WildcardLastMatch returns the wildcard's previously observed matched
// path set (nil on first check).
func (s *Store) WildcardLastMatch(id ID) map[string]struct{} {
	w, ok := s.Wildcards[id]
	if !ok {
		return nil
	}
	return w.lastMatch
}

// SetWildcardLastMatch records the matched path set observed on this
// check, for comparison on the next one.
func (s *Store) SetWildcardLastMatch(id ID, set map[string]struct{}) {
	if w, ok := s.Wildcards[id]; ok {
		w.lastMatch = set
	}
}

// HubEqualsAbstractly implements the spec's EqualsAbstractly for hubs:
// path and input_vars agree; hub_dep is ignored when either the
// candidate's or the existing hub's is NoID, so an orphan can be
// reclaimed by a caller that names a parent.
func HubEqualsAbstractly(existing *Hub, path string, vars Variables, candidateHubDep ID) bool {
	if existing.Path != path {
		return false
	}
	if len(existing.InputVars) != len(vars) {
		return false
	}
	for k, v := range vars {
		if existing.InputVars[k] != v {
			return false
		}
	}
	if candidateHubDep != NoID && existing.HubDep != NoID && existing.HubDep != candidateHubDep {
		return false
	}
	return true
}

// FindOrAddHub interns a hub by EqualsAbstractly. On a miss it inserts
// the hub without queuing it on any work-list; callers decide which
// list gets a newly created hub (see monitor's processHubSpecs and
// AddBaseHubFile).
func (s *Store) FindOrAddHub(path string, hubDep ID, vars Variables) (id ID, created bool) {
	for existingID, h := range s.Hubs {
		if HubEqualsAbstractly(h, path, vars, hubDep) {
			if hubDep != NoID {
				h.HubDep = hubDep
			}
			return existingID, false
		}
	}
	id = s.newID()
	pathDepID := s.FindOrAddMonitoredPath(path, nil)
	s.Hubs[id] = &Hub{
		ID:        id,
		Path:      path,
		HubDep:    hubDep,
		PathDeps:  []ID{pathDepID},
		InputVars: vars.Clone(),
	}
	return id, true
}

// PipeEqualsAbstractly implements the spec's EqualsAbstractly for pipes:
// tool, base_in, base_out, and settings agree; hub_dep treated the same
// as for hubs. This is deliberately narrow — it is the incrementality
// engine that lets a re-parsed hub reclaim an orphaned pipe with its
// path_deps intact. Do not widen it to include hub_dep.
func PipeEqualsAbstractly(existing *Pipe, tool, baseIn, baseOut string, settings []byte, candidateHubDep ID) bool {
	if existing.Tool != tool || existing.BaseIn != baseIn || existing.BaseOut != baseOut {
		return false
	}
	if !bytes.Equal(normalizeSettings(existing.Settings), normalizeSettings(settings)) {
		return false
	}
	if candidateHubDep != NoID && existing.HubDep != NoID && existing.HubDep != candidateHubDep {
		return false
	}
	return true
}

func normalizeSettings(b []byte) []byte {
	if len(b) == 0 {
		return []byte("null")
	}
	return b
}

// FindOrAddPipe interns a pipe. On a structural hit where the caller
// supplies a non-NoID hub_dep, the (possibly orphaned) pipe is
// re-parented and, if it was sitting in OrphanedDirtyPipes, migrated to
// DirtyPipes — this is how a persistence-reloaded or manifest-dropped
// pipe gets reclaimed without losing its path_deps.
func (s *Store) FindOrAddPipe(hubDep, wildcardDep ID, tool, baseIn, baseOut string, settings []byte) (id ID, created bool) {
	for existingID, p := range s.Pipes {
		if PipeEqualsAbstractly(p, tool, baseIn, baseOut, settings, hubDep) {
			if hubDep != NoID {
				p.HubDep = hubDep
				if wildcardDep != NoID {
					p.WildcardDep = wildcardDep
				}
				if s.OrphanedDirtyPipes.Remove(existingID) {
					s.DirtyPipes.Add(existingID)
				}
			}
			return existingID, false
		}
	}
	id = s.newID()
	s.Pipes[id] = &Pipe{
		ID:          id,
		HubDep:      hubDep,
		WildcardDep: wildcardDep,
		Tool:        tool,
		BaseIn:      baseIn,
		BaseOut:     baseOut,
		Settings:    append([]byte(nil), settings...),
	}
	return id, true
}

// FindOrAddPipeWildcard interns a pipe wildcard. Re-parenting is elided
// per the spec: wildcards are cheap to recompute from scratch.
func (s *Store) FindOrAddPipeWildcard(hubDep, wildcardDep ID, tool, baseIn, baseOut string, vars Variables, settings []byte) (id ID, created bool) {
	for existingID, pw := range s.PipeWilds {
		if pw.Tool == tool && pw.BaseIn == baseIn && pw.BaseOut == baseOut && pw.WildcardDep == wildcardDep {
			return existingID, false
		}
	}
	id = s.newID()
	s.PipeWilds[id] = &PipeWildcard{
		ID:          id,
		HubDep:      hubDep,
		WildcardDep: wildcardDep,
		Tool:        tool,
		BaseIn:      baseIn,
		BaseOut:     baseOut,
		InputVars:   vars.Clone(),
		Settings:    append([]byte(nil), settings...),
	}
	return id, true
}
