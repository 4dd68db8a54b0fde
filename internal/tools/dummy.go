package tools

import (
	"encoding/json"
	"fmt"

	"pipewatch/internal/pipetool"
)

type dummySettings struct {
	Special string `json:"special"`
}

// Dummy reads FileIn, prints a one-line summary of what it saw, and
// only actually copies to FileOut when Settings.special carries the
// original's literal opt-in string — kept mostly for parity with the
// original's diagnostic pipe tool rather than as a production tool.
func Dummy(instr *pipetool.Instr) error {
	outExisted := instr.Probe.Exists(instr.FileOut)

	data, err := instr.Probe.Read(instr.FileIn)
	if err != nil {
		return err
	}

	fmt.Printf("dummy: %s (%d bytes) -> %s (existed=%v)\n", instr.FileIn, len(data), instr.FileOut, outExisted)

	var settings dummySettings
	if len(instr.Settings) > 0 {
		_ = json.Unmarshal(instr.Settings, &settings)
	}
	if settings.Special != "do it, you coward" {
		return nil
	}

	return SmartCopy(instr)
}
