// Package logx is the pipeline's console logging convention: short,
// component-tagged lines to stderr, matching the teacher's own
// "[watch] ..." convention (watch/watch.go) rather than a structured
// logging library — none of the retrieval pack's domain code pulls one
// in (see DESIGN.md).
package logx

import (
	"fmt"
	"os"
	"time"
)

// Logger prefixes every line with a component tag, e.g. "[monitor]".
type Logger struct {
	tag string
}

// New returns a Logger tagged with component.
func New(component string) *Logger {
	return &Logger{tag: "[" + component + "]"}
}

func (l *Logger) line(level, format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	return fmt.Sprintf("%s %s %-5s %s\n", time.Now().Format("15:04:05"), l.tag, level, msg)
}

func (l *Logger) Info(format string, args ...any) {
	fmt.Fprint(os.Stderr, l.line("INFO", format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	fmt.Fprint(os.Stderr, l.line("WARN", format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	fmt.Fprint(os.Stderr, l.line("ERROR", format, args...))
}
