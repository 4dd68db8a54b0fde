package wildcard

import "pipewatch/internal/fsprobe"

// ProbeReadDir adapts an fsprobe.Probe to the plain (names, isDir, err)
// shape Enumerate walks with, so the wildcard package stays decoupled
// from the probe's richer interface.
func ProbeReadDir(p fsprobe.Probe) func(string) ([]string, []bool, error) {
	return func(dir string) ([]string, []bool, error) {
		entries, err := p.ReadDir(dir)
		if err != nil {
			return nil, nil, err
		}
		names := make([]string, len(entries))
		isDir := make([]bool, len(entries))
		for i, e := range entries {
			names[i] = e.Name
			isDir[i] = e.IsDir
		}
		return names, isDir, nil
	}
}

// HasChanged compares the previous matched-path set against a fresh
// enumeration, reporting whether the set of matched files changed since
// the last check (additions, removals — not per-file content changes,
// which are tracked separately via each matched path's own
// MonitoredPath entry).
func HasChanged(prev map[string]struct{}, matches []Match) (changed bool, next map[string]struct{}) {
	next = make(map[string]struct{}, len(matches))
	for _, m := range matches {
		next[m.Path] = struct{}{}
	}
	if len(next) != len(prev) {
		return true, next
	}
	for p := range next {
		if _, ok := prev[p]; !ok {
			return true, next
		}
	}
	return false, next
}
