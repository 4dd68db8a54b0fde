// Package pipetool defines the contract pipe tools are written against:
// one function plus a probe. There is no hierarchy — the spec is explicit
// that tools are a registry of named functions, not a class of objects.
package pipetool

import (
	"encoding/json"
	"time"

	"pipewatch/internal/fsprobe"
)

// ReadFile records a path a tool read, with the last-write-time observed
// before the read (as captured by the snooping probe).
type ReadFile struct {
	Path         string
	PreviousTime time.Time
}

// WrittenFile records a path a tool wrote.
type WrittenFile struct {
	Path string
}

// Instr is handed to a tool's Run function; the tool may read FileIn,
// must produce FileOut, and should drive every filesystem access through
// Probe so it is counted. ReadFiles/WrittenFiles may be populated by the
// tool itself, by the wrangler after Run returns (from Probe's access
// log), or both — the two are merged and deduplicated by the wrangler so
// the final result always reflects every access the probe observed.
type Instr struct {
	FileIn   string
	FileOut  string
	Settings json.RawMessage
	Probe    fsprobe.Probe

	ReadFiles    []ReadFile
	WrittenFiles []WrittenFile
}

// Func is a pipe tool: it may return an error (caught by the wrangler
// and reported as the task's error), and should use Instr.Probe for any
// filesystem access it wants counted toward the pipe's dependency set.
type Func func(instr *Instr) error
