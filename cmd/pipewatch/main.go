// Command pipewatch is the host process: it embeds the Change Monitor
// coordinator and exposes it over an HTTP status page, an MCP tool
// surface, and a YAML config file that can be hot-reloaded without a
// restart.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
