package toolreg

import (
	"testing"

	"pipewatch/internal/pipetool"
)

func TestFindUnknownTool(t *testing.T) {
	r := New()
	_, err := r.Find("nope")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if _, ok := err.(*ErrUnknownTool); !ok {
		t.Fatalf("expected *ErrUnknownTool, got %T", err)
	}
}

func TestRegisterAndFind(t *testing.T) {
	r := New()
	called := false
	r.Register("noop", func(instr *pipetool.Instr) error {
		called = true
		return nil
	})
	fn, err := r.Find("noop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fn(&pipetool.Instr{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("expected the registered function to run")
	}
}

func TestNamesSorted(t *testing.T) {
	r := New()
	r.Register("zeta", func(*pipetool.Instr) error { return nil })
	r.Register("alpha", func(*pipetool.Instr) error { return nil })
	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Fatalf("expected sorted names, got %v", names)
	}
}
