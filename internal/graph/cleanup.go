package graph

// MakeDependantsOnHubOrphan clears HubDep on every hub and pipe that
// currently names hubID as its parent, staging hubs on
// PotentiallyOrphanedHubs and moving pipes onto OrphanedDirtyPipes (and
// off DirtyPipes/OutboxPipes) so the coordinator can reclaim them with a
// later FindOrAddHub/FindOrAddPipe hit. Hubs left unclaimed are erased
// by the next CleanupOrphanHubs pass; orphaned pipes are never erased
// and stay in the table until a FindOrAddPipe hit reclaims them.
func (s *Store) MakeDependantsOnHubOrphan(hubID ID) {
	s.makeDependantsOnHubOrphan(hubID, make(map[ID]bool))
}

// makeDependantsOnHubOrphan carries a visited set so no hub is expanded
// twice. Clearing each child's HubDep before descending already keeps a
// hub_dep cycle from recursing forever; the visited set is a second
// guard on top of that, and a revisit simply returns.
func (s *Store) makeDependantsOnHubOrphan(hubID ID, visited map[ID]bool) {
	if visited[hubID] {
		return
	}
	visited[hubID] = true

	for id, h := range s.Hubs {
		if h.HubDep == hubID {
			h.HubDep = NoID
			s.PotentiallyOrphanedHubs.Add(id)
			s.makeDependantsOnHubOrphan(id, visited)
		}
	}
	for id, p := range s.Pipes {
		if p.HubDep == hubID {
			p.HubDep = NoID
			s.OrphanedDirtyPipes.Add(id)
			s.DirtyPipes.Remove(id)
			s.OutboxPipes.Remove(id)
		}
	}
	for _, pw := range s.PipeWilds {
		if pw.HubDep == hubID {
			pw.HubDep = NoID
		}
	}
}

// CleanupOrphanHubs erases every hub in PotentiallyOrphanedHubs that is
// still parentless, cascading the orphan to its own dependants first.
func (s *Store) CleanupOrphanHubs() {
	pending := s.PotentiallyOrphanedHubs.DrainAll()
	for _, id := range pending {
		h, ok := s.Hubs[id]
		if !ok {
			continue
		}
		if h.HubDep != NoID {
			continue // reclaimed by a later FindOrAddHub
		}
		s.MakeDependantsOnHubOrphan(id)
		delete(s.Hubs, id)
		s.DirtyHubs.Remove(id)
		s.FutureDirtyHubs.Remove(id)
		s.OrphanedDirtyHubs.Remove(id)
	}
}

// PathHasUsers reports whether any hub or pipe still lists pathID in its
// path_deps (invariant 6: a MonitoredPath is kept iff some hub or pipe
// references it).
func (s *Store) PathHasUsers(pathID ID) bool {
	for _, h := range s.Hubs {
		if containsID(h.PathDeps, pathID) {
			return true
		}
	}
	for _, p := range s.Pipes {
		if containsID(p.PathDeps, pathID) {
			return true
		}
	}
	return false
}

// ErasePathIfUnused removes a monitored path once its last user is gone.
// The caller is additionally responsible for confirming the physical
// file is missing, per the lifecycle rule in the spec's data model.
func (s *Store) ErasePathIfUnused(pathID ID) bool {
	if s.PathHasUsers(pathID) {
		return false
	}
	delete(s.Paths, pathID)
	s.SuspectPaths.Remove(pathID)
	s.FutureSuspectPaths.Remove(pathID)
	return true
}

// DependantHubsAndPipes returns every hub/pipe id whose PathDeps contains
// pathID, used to mark dependants dirty when a monitored path changes.
func (s *Store) DependantHubsAndPipes(pathID ID) (hubs []ID, pipes []ID) {
	for id, h := range s.Hubs {
		if containsID(h.PathDeps, pathID) {
			hubs = append(hubs, id)
		}
	}
	for id, p := range s.Pipes {
		if containsID(p.PathDeps, pathID) {
			pipes = append(pipes, id)
		}
	}
	return
}

// DependantPipeWildcards returns every pipe wildcard whose WildcardDep is
// wildcardID.
func (s *Store) DependantPipeWildcards(wildcardID ID) []ID {
	var out []ID
	for id, pw := range s.PipeWilds {
		if pw.WildcardDep == wildcardID {
			out = append(out, id)
		}
	}
	return out
}

// AddPipePathDep appends pathID to the pipe's PathDeps if not already
// present.
func (s *Store) AddPipePathDep(pipeID, pathID ID) {
	p, ok := s.Pipes[pipeID]
	if !ok {
		return
	}
	if !containsID(p.PathDeps, pathID) {
		p.PathDeps = append(p.PathDeps, pathID)
	}
}
