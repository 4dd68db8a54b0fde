// Package graph implements the typed, multi-indexed dependency graph owned
// exclusively by the coordinator: monitored paths and wildcards, hubs,
// pipe wildcards, pipes, and the work-lists that drive a poll cycle.
package graph

// ID is the dense integer identifier shared by every node kind. IDs are
// monotonic and never reused within the lifetime of a Store.
type ID uint64

// NoID is the sentinel meaning "no dependency" or "orphaned." The
// allocator never hands this value out.
const NoID ID = 0

// RootID is a fixed sentinel used as the HubDep of user-supplied base
// hubs so they are never considered orphaned. It is distinct from NoID
// and, like NoID, is never allocated by the id counter.
const RootID ID = ^ID(0)
