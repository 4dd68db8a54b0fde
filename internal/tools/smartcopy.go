// Package tools provides the built-in pipe tools and their registration
// entry point, grounded on original_source/Pubc/Pipe Tool Smartcopy.cpp
// and Pipe Tool Dummy.cpp.
package tools

import (
	"path/filepath"

	"pipewatch/internal/pipetool"
)

// SmartCopy ensures FileOut's parent directory exists, removes any
// stale FileOut, and copies FileIn over it — the same three steps as
// the original SmartCopy::Run, minus its explicit book-keeping loop
// since pipetool.Instr.Probe is already a snooping probe the wrangler
// folds back into the task result.
func SmartCopy(instr *pipetool.Instr) error {
	if err := instr.Probe.CreateDirectories(filepath.Dir(instr.FileOut)); err != nil {
		return err
	}
	if instr.Probe.Exists(instr.FileOut) {
		if err := instr.Probe.Remove(instr.FileOut); err != nil {
			return err
		}
	}
	data, err := instr.Probe.Read(instr.FileIn)
	if err != nil {
		return err
	}
	return instr.Probe.Write(instr.FileOut, data)
}
