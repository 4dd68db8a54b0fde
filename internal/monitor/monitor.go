// Package monitor implements the Change Monitor: the single-threaded
// coordinator that owns the graph store, polls the filesystem, expands
// hub manifests, schedules the wrangler, consumes its results, and
// drives persistence. It is grounded directly on
// original_source/Pubc/File Change Monitor.h's FileChangeMonitor class —
// the Go translation keeps one coordinator goroutine and one mutex
// guarding the graph, exactly as the original's single UpdateThread plus
// MutexAccessFiles.
package monitor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pipewatch/internal/fsprobe"
	"pipewatch/internal/graph"
	"pipewatch/internal/logx"
	"pipewatch/internal/persist"
	"pipewatch/internal/toolreg"
	"pipewatch/internal/wildcard"
	"pipewatch/internal/wrangler"
)

// Epsilon is the time-comparison tolerance: mtimes within this window of
// each other are considered unchanged. Critical when times cross
// library/filesystem precision boundaries.
const Epsilon = 5 * time.Millisecond

const (
	pathTimeout = time.Second
	hubTimeout  = time.Second
	pipeTimeout = 4 * time.Second
)

type runState int32

const (
	stateStopped runState = iota
	stateStarting
	stateRunning
)

// Config controls the coordinator's resource and timing behavior.
type Config struct {
	PollInterval          time.Duration
	MaxWorkers            int
	TrackWrittenFileEdges bool
	RenameStaleExeOutputs  bool // Windows special case from §4.G
}

// DefaultConfig returns the spec's literal defaults: 250ms poll, hardware
// concurrency workers.
func DefaultConfig() Config {
	return Config{
		PollInterval:          250 * time.Millisecond,
		MaxWorkers:            0,
		TrackWrittenFileEdges: false,
		RenameStaleExeOutputs: true,
	}
}

// TrackedInfo is the read-only snapshot the HTTP status page and the MCP
// "get_tracked_information" tool both consume.
type TrackedInfo struct {
	Paths     []string
	Hubs      []string
	Wildcards []string
	Tools     []string
	Dirty     int
	Outbox    int
	Pending   int
}

// Monitor is the coordinator.
type Monitor struct {
	cfg      Config
	store    *graph.Store
	probe    fsprobe.Probe
	wrangler *wrangler.Wrangler
	registry *toolreg.Registry
	persist  persist.Store
	log      *logx.Logger

	mu sync.Mutex

	refDir        string
	persistentDir string

	inboxMu sync.Mutex
	inbox   []wrangler.Result

	nextTaskID uint64
	taskPipe   map[uint64]graph.ID // valid only inside the loop goroutine

	ignoreCache *wildcard.IgnoreCache

	state   atomic.Int32
	doneCh  chan struct{}
	loopWG  sync.WaitGroup

	savePending bool

	// Version is logged once by Begin (start_processing), the spec's
	// out-of-scope "version banner" collaborator kept as a plain string
	// field that New fills in (see SPEC_FULL.md).
	Version string
}

// New builds a Monitor. probe is normally fsprobe.NewOSProbe(); a test
// may substitute a fake. ps may be nil, meaning persistence is disabled.
func New(cfg Config, probe fsprobe.Probe, registry *toolreg.Registry, ps persist.Store) *Monitor {
	m := &Monitor{
		cfg:      cfg,
		store:    graph.NewStore(),
		probe:    probe,
		registry: registry,
		persist:  ps,
		log:      logx.New("monitor"),
		taskPipe: make(map[uint64]graph.ID),
		Version:  "pipewatch/0.1.0",
	}
	m.wrangler = wrangler.New(registry, func() fsprobe.Probe { return probe })
	return m
}

// SetReferenceDirectory overrides the anchor for relative hub paths. The
// coordinator must be stopped.
func (m *Monitor) SetReferenceDirectory(path string) error {
	if runState(m.state.Load()) != stateStopped {
		return fmt.Errorf("monitor: cannot set reference directory while running")
	}
	m.refDir = path
	return nil
}

// SetPersistentDirectory overrides where state.json lives. The
// coordinator must be stopped.
func (m *Monitor) SetPersistentDirectory(path string) error {
	if runState(m.state.Load()) != stateStopped {
		return fmt.Errorf("monitor: cannot set persistent directory while running")
	}
	m.persistentDir = path
	return nil
}

// AddBaseHubFile canonicalizes path relative to the reference directory
// and adds it as a root hub, parented on graph.RootID so it is never
// orphaned, with "cur-dir" seeded to the hub's own parent directory.
func (m *Monitor) AddBaseHubFile(path string) error {
	abs, err := m.probe.Canonical(joinIfRelative(m.refDir, path))
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vars := graph.Variables{"cur-dir": parentDir(abs)}
	id, _ := m.store.FindOrAddHub(abs, graph.RootID, vars)
	m.store.DirtyHubs.Add(id)
	m.log.Info("added base hub %s", abs)
	return nil
}

// Begin loads persisted state, starts the wrangler, and starts the
// coordinator loop goroutine. It returns once the initial load has
// completed; the loop itself runs asynchronously.
func (m *Monitor) Begin() error {
	if !m.state.CompareAndSwap(int32(stateStopped), int32(stateStarting)) {
		return fmt.Errorf("monitor: already starting or running")
	}

	m.ignoreCache = wildcard.NewIgnoreCache(m.refDir)

	if m.persist != nil {
		if err := m.loadFromPersistent(); err != nil {
			m.log.Warn("persistence load failed: %v", err)
		}
	}

	m.log.Info("%s starting", m.Version)

	m.wrangler.Start(m.cfg.MaxWorkers)

	m.doneCh = make(chan struct{})
	m.state.Store(int32(stateRunning))
	m.loopWG.Add(1)
	go m.loop()
	return nil
}

// EndAndWait signals the loop to stop, waits for the current iteration
// to finish, then drains and joins the wrangler.
func (m *Monitor) EndAndWait() {
	if runState(m.state.Load()) == stateStopped {
		return
	}
	close(m.doneCh)
	m.loopWG.Wait()
	m.wrangler.StopAndWait()
	m.state.Store(int32(stateStopped))
	m.log.Info("stopped")
}

// IsStopped reports whether the coordinator loop is not running.
func (m *Monitor) IsStopped() bool {
	return runState(m.state.Load()) == stateStopped
}

// Snapshot takes a read-only copy of tracked information under the
// coordinator's lock, for the HTTP status page and the MCP surface.
func (m *Monitor) Snapshot() TrackedInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := TrackedInfo{
		Tools:   m.registry.Names(),
		Dirty:   m.store.DirtyPipes.Len(),
		Outbox:  m.store.OutboxPipes.Len(),
		Pending: m.store.PendingPipes.Len(),
	}
	for _, p := range m.store.Paths {
		info.Paths = append(info.Paths, p.Path)
	}
	for _, h := range m.store.Hubs {
		info.Hubs = append(info.Hubs, h.Path)
	}
	for _, w := range m.store.Wildcards {
		info.Wildcards = append(info.Wildcards, w.PatternPath)
	}
	return info
}

// RecentHistory returns up to limit of the most recent completed pipe
// executions, newest first. It reports ok=false when the configured
// persistence backend doesn't keep a build history (the plain JSON
// backend, or no persistence at all).
func (m *Monitor) RecentHistory(limit int) (entries []persist.HistoryEntry, ok bool, err error) {
	hs, supported := m.persist.(persist.HistoryStore)
	if !supported {
		return nil, false, nil
	}
	entries, err = hs.RecentHistory(limit)
	return entries, true, err
}

