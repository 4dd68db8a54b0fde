// Package pidfile tracks a single running "pipewatch start" process per
// persistent directory, so a second start refuses to double-run and
// "pipewatch stop" has something to signal. Adapted from the teacher's
// watch.WritePID/ReadPID/IsRunning/Stop (watch/watch.go), which did the
// same thing for its own daemon under .codemap/watch.pid.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

func path(dir string) string {
	return filepath.Join(dir, "pipewatch.pid")
}

// Write records the current process PID under dir.
func Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(path(dir), []byte(fmt.Sprintf("%d", os.Getpid())), 0o644)
}

// Read returns the PID recorded under dir.
func Read(dir string) (int, error) {
	data, err := os.ReadFile(path(dir))
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, err
	}
	return pid, nil
}

// Remove deletes the PID file. Safe to call even if it never existed.
func Remove(dir string) {
	os.Remove(path(dir))
}

// IsRunning reports whether the PID recorded under dir names a live
// process, probed with signal 0.
func IsRunning(dir string) bool {
	pid, err := Read(dir)
	if err != nil {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// Stop sends SIGTERM to the process recorded under dir and removes the
// PID file.
func Stop(dir string) error {
	pid, err := Read(dir)
	if err != nil {
		return fmt.Errorf("no pipewatch process recorded in %s: %w", dir, err)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return err
	}
	Remove(dir)
	return nil
}
