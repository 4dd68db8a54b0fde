package tools

import (
	"encoding/json"
	"testing"
	"time"

	"pipewatch/internal/fsprobe"
	"pipewatch/internal/pipetool"
)

func TestSmartCopyOverwritesStaleOutput(t *testing.T) {
	probe := fsprobe.NewMemProbe()
	probe.Touch("in.txt", []byte("fresh"), time.Now())
	probe.Touch("out.txt", []byte("stale"), time.Now().Add(-time.Hour))

	instr := &pipetool.Instr{FileIn: "in.txt", FileOut: "out.txt", Probe: probe}
	if err := SmartCopy(instr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := probe.Read("out.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "fresh" {
		t.Fatalf("expected out.txt to contain the copied data, got %q", data)
	}
}

func TestDummySkipsCopyWithoutOptIn(t *testing.T) {
	probe := fsprobe.NewMemProbe()
	probe.Touch("in.txt", []byte("payload"), time.Now())

	instr := &pipetool.Instr{FileIn: "in.txt", FileOut: "out.txt", Probe: probe}
	if err := Dummy(instr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probe.Exists("out.txt") {
		t.Fatalf("expected Dummy to skip the copy without the opt-in setting")
	}
}

func TestDummyCopiesWithOptIn(t *testing.T) {
	probe := fsprobe.NewMemProbe()
	probe.Touch("in.txt", []byte("payload"), time.Now())

	settings, err := json.Marshal(map[string]string{"special": "do it, you coward"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	instr := &pipetool.Instr{FileIn: "in.txt", FileOut: "out.txt", Settings: settings, Probe: probe}
	if err := Dummy(instr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !probe.Exists("out.txt") {
		t.Fatalf("expected Dummy to copy once opted in")
	}
}
