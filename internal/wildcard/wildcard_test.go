package wildcard

import (
	"strings"
	"testing"
	"time"

	"pipewatch/internal/fsprobe"
)

func TestContainsWildcard(t *testing.T) {
	cases := map[string]bool{
		"src/main.go":       false,
		"src/*.go":          true,
		"modules/~name~/go": true,
	}
	for path, want := range cases {
		if got := ContainsWildcard(path); got != want {
			t.Fatalf("ContainsWildcard(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestEnumerateCapturesVars(t *testing.T) {
	probe := fsprobe.NewMemProbe()
	now := time.Now()
	probe.Touch("modules/auth/pipe.json", []byte("{}"), now)
	probe.Touch("modules/billing/pipe.json", []byte("{}"), now)
	probe.Touch("modules/auth/README.md", []byte("x"), now)

	matches, err := Enumerate(ProbeReadDir(probe), "modules/~name~/pipe.json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(matches), matches)
	}
	got := map[string]string{}
	for _, m := range matches {
		got[m.Path] = m.Vars["name"]
	}
	if got["modules/auth/pipe.json"] != "auth" {
		t.Fatalf("expected captured var %q, got %+v", "auth", got)
	}
	if got["modules/billing/pipe.json"] != "billing" {
		t.Fatalf("expected captured var %q, got %+v", "billing", got)
	}
}

func TestEnumerateSkipsBuiltinDirs(t *testing.T) {
	probe := fsprobe.NewMemProbe()
	now := time.Now()
	probe.Touch("root/vendor/pipe.json", []byte("{}"), now)
	probe.Touch("root/modules/pipe.json", []byte("{}"), now)

	matches, err := Enumerate(ProbeReadDir(probe), "root/*/pipe.json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, m := range matches {
		if strings.Contains(m.Path, "vendor") {
			t.Fatalf("expected vendor/ to be skipped, got %+v", matches)
		}
	}
	if len(matches) != 1 || matches[0].Path != "root/modules/pipe.json" {
		t.Fatalf("expected only root/modules/pipe.json to match, got %+v", matches)
	}
}

func TestHasChangedDetectsAdditionsAndRemovals(t *testing.T) {
	prev := map[string]struct{}{"a": {}, "b": {}}

	changed, next := HasChanged(prev, []Match{{Path: "a"}, {Path: "b"}})
	if changed {
		t.Fatalf("expected no change for an identical set")
	}

	changed, next = HasChanged(prev, []Match{{Path: "a"}, {Path: "c"}})
	if !changed {
		t.Fatalf("expected a change when the set differs")
	}
	if _, ok := next["c"]; !ok {
		t.Fatalf("expected next to reflect the new match")
	}
}
