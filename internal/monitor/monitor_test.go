package monitor

import (
	"testing"
	"time"

	"pipewatch/internal/fsprobe"
	"pipewatch/internal/pipetool"
	"pipewatch/internal/toolreg"
	"pipewatch/internal/wrangler"
)

func newEchoRegistry() *toolreg.Registry {
	reg := toolreg.New()
	reg.Register("echo", func(instr *pipetool.Instr) error {
		data, err := instr.Probe.Read(instr.FileIn)
		if err != nil {
			return err
		}
		return instr.Probe.Write(instr.FileOut, data)
	})
	return reg
}

func fastTestConfig() Config {
	cfg := DefaultConfig()
	cfg.PollInterval = 10 * time.Millisecond
	cfg.MaxWorkers = 2
	return cfg
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition never became true within %v", timeout)
}

// TestEndToEndHubDrivesPipeExecution exercises the full path a single
// direct pipe spec takes: a base hub file is registered, the coordinator
// loop parses it, schedules the pipe, runs it through the wrangler, and
// the output lands on the probe.
func TestEndToEndHubDrivesPipeExecution(t *testing.T) {
	probe := fsprobe.NewMemProbe()
	probe.Touch("in.txt", []byte("payload"), time.Now())
	probe.Touch("hub.json", []byte(`{
		"pipes": [
			{"tool": "echo", "paths": [{"in": "in.txt", "out": "out.txt"}]}
		]
	}`), time.Now())

	mon := New(fastTestConfig(), probe, newEchoRegistry(), nil)
	if err := mon.Begin(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer mon.EndAndWait()

	if err := mon.AddBaseHubFile("hub.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return probe.Exists("out.txt") })

	data, err := probe.Read("out.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("expected the echoed payload, got %q", data)
	}

	info := mon.Snapshot()
	if len(info.Hubs) != 1 {
		t.Fatalf("expected one tracked hub, got %+v", info.Hubs)
	}
}

// TestEndToEndPathChangeRetriggersPipe verifies a pipe re-runs after its
// input file's mtime moves forward.
func TestEndToEndPathChangeRetriggersPipe(t *testing.T) {
	probe := fsprobe.NewMemProbe()
	probe.Touch("in.txt", []byte("v1"), time.Now())
	probe.Touch("hub.json", []byte(`{
		"pipes": [
			{"tool": "echo", "paths": [{"in": "in.txt", "out": "out.txt"}]}
		]
	}`), time.Now())

	mon := New(fastTestConfig(), probe, newEchoRegistry(), nil)
	if err := mon.Begin(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer mon.EndAndWait()

	if err := mon.AddBaseHubFile("hub.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return probe.Exists("out.txt") })

	data, _ := probe.Read("out.txt")
	if string(data) != "v1" {
		t.Fatalf("expected v1, got %q", data)
	}

	probe.Touch("in.txt", []byte("v2"), time.Now().Add(time.Second))

	waitFor(t, 2*time.Second, func() bool {
		data, _ := probe.Read("out.txt")
		return string(data) == "v2"
	})
}

// TestBeginTwiceRejectsDoubleStart checks the running-state guard.
func TestBeginTwiceRejectsDoubleStart(t *testing.T) {
	probe := fsprobe.NewMemProbe()
	mon := New(fastTestConfig(), probe, toolreg.New(), nil)
	if err := mon.Begin(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer mon.EndAndWait()

	if err := mon.Begin(); err == nil {
		t.Fatalf("expected a second Begin to fail")
	}
}

// TestSetReferenceDirectoryRejectedWhileRunning checks the stopped-only
// guard on configuration setters.
func TestSetReferenceDirectoryRejectedWhileRunning(t *testing.T) {
	probe := fsprobe.NewMemProbe()
	mon := New(fastTestConfig(), probe, toolreg.New(), nil)
	if err := mon.Begin(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer mon.EndAndWait()

	if err := mon.SetReferenceDirectory("/tmp/elsewhere"); err == nil {
		t.Fatalf("expected the setter to be rejected while running")
	}
}

// TestWrittenFileEdgeDirtiesConsumer exercises SPEC_FULL.md's
// written-file tracking MAY clause directly against drainInbox: a
// producer pipe's result names a written file that another pipe's
// base_in matches, and that consumer pipe must come out dirty.
func TestWrittenFileEdgeDirtiesConsumer(t *testing.T) {
	probe := fsprobe.NewMemProbe()
	cfg := fastTestConfig()
	cfg.TrackWrittenFileEdges = true

	mon := New(cfg, probe, newEchoRegistry(), nil)

	hubID, _ := mon.store.FindOrAddHub("/hub.json", 1, nil)
	producerID, _ := mon.store.FindOrAddPipe(hubID, 0, "echo", "a.txt", "mid.txt", nil)
	consumerID, _ := mon.store.FindOrAddPipe(hubID, 0, "echo", "mid.txt", "final.txt", nil)
	mon.store.DirtyPipes.Remove(producerID)
	mon.store.DirtyPipes.Remove(consumerID)
	mon.store.PendingPipes.Add(producerID)

	mon.inbox = append(mon.inbox, wrangler.Result{
		ID:           uint64(producerID),
		WrittenFiles: []pipetool.WrittenFile{{Path: "mid.txt"}},
	})

	mon.drainInbox(time.Now())

	if !mon.store.DirtyPipes.Contains(consumerID) {
		t.Fatalf("expected the consumer pipe to be dirtied by the producer's written-file edge")
	}
	if mon.store.ProducedBy["mid.txt"] != producerID {
		t.Fatalf("expected ProducedBy to record the producer")
	}
}

// TestPendingPipeHasNoPathDepsInvariant checks that a freshly scheduled
// pipe carries no path dependencies until its first successful run
// reports the files it read.
func TestPendingPipeHasNoPathDepsInvariant(t *testing.T) {
	probe := fsprobe.NewMemProbe()
	probe.Touch("in.txt", []byte("x"), time.Now())
	probe.Touch("hub.json", []byte(`{
		"pipes": [
			{"tool": "echo", "paths": [{"in": "in.txt", "out": "out.txt"}]}
		]
	}`), time.Now())

	mon := New(fastTestConfig(), probe, newEchoRegistry(), nil)
	if err := mon.Begin(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer mon.EndAndWait()
	if err := mon.AddBaseHubFile("hub.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	violation := false
	waitFor(t, 2*time.Second, func() bool {
		mon.mu.Lock()
		for _, id := range mon.store.PendingPipes.List() {
			if p, ok := mon.store.Pipes[id]; ok && len(p.PathDeps) != 0 {
				violation = true
			}
		}
		mon.mu.Unlock()
		return probe.Exists("out.txt")
	})
	if violation {
		t.Fatalf("expected every pending pipe to carry no path dependencies")
	}
}
