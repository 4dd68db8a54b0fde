package graph

// idSet is an insertion-ordered set of IDs. Work-lists (suspect, dirty,
// orphan, outbox, pending) are small in practice, but invariant 2 from the
// spec ("no duplicates pairwise") must hold exactly, so membership is
// tracked with a map rather than re-scanning a slice on every push.
type idSet struct {
	order []ID
	index map[ID]int
}

func newIDSet() *idSet {
	return &idSet{index: make(map[ID]int)}
}

// Add appends id if not already present. Returns true if it was added.
func (s *idSet) Add(id ID) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.order)
	s.order = append(s.order, id)
	return true
}

func (s *idSet) Contains(id ID) bool {
	_, ok := s.index[id]
	return ok
}

// Remove deletes id from the set if present.
func (s *idSet) Remove(id ID) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	delete(s.index, id)
	s.order = append(s.order[:i], s.order[i+1:]...)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
	return true
}

func (s *idSet) Len() int { return len(s.order) }

// List returns a copy of the current membership in insertion order.
func (s *idSet) List() []ID {
	out := make([]ID, len(s.order))
	copy(out, s.order)
	return out
}

// DrainAll empties the set and returns its former membership in order.
func (s *idSet) DrainAll() []ID {
	out := s.order
	s.order = nil
	s.index = make(map[ID]int)
	return out
}

// MoveAllTo appends every member of s onto dst (skipping ones dst already
// has) and empties s. This is how FutureX sets get promoted into X sets.
func (s *idSet) MoveAllTo(dst *idSet) {
	for _, id := range s.order {
		dst.Add(id)
	}
	s.order = nil
	s.index = make(map[ID]int)
}
