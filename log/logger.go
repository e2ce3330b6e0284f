// Package log is a minimal leveled logger used across the orchestrator.
//
// It intentionally stays a thin io.Writer wrapper rather than pulling in a
// structured logging library: nothing else in this system needs fields,
// sampling or JSON output, just prefixed lines to a terminal or a log file.
package log

import (
	"fmt"
	"io"
)

// Logger writes prefixed lines to an underlying io.Writer. The zero value is
// not usable; construct one with New.
type Logger struct {
	io.Writer
	quiet bool
}

// New returns a new logger which writes to w.
func New(w io.Writer) *Logger {
	return &Logger{Writer: w}
}

// SetQuiet suppresses Logln/Logf/Sebexfln output while leaving
// Warnfln/Fatalfln active.
func (l *Logger) SetQuiet(q bool) {
	l.quiet = q
}

// Logln logs a line.
func (l *Logger) Logln(args ...interface{}) {
	if l.quiet {
		return
	}
	fmt.Fprintln(l, args...)
}

// Logf logs a formatted string, without a trailing newline.
func (l *Logger) Logf(f string, args ...interface{}) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l, f, args...)
}

// Sebexfln logs a formatted line, prefixed with `sebex: `.
func (l *Logger) Sebexfln(format string, args ...interface{}) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l, "sebex: "+format+"\n", args...)
}

// Warnfln logs a formatted line, prefixed with `warning: `, regardless of
// quiet mode: obsolete-dependent and skipped-update warnings from the
// planner must always reach the operator.
func (l *Logger) Warnfln(format string, args ...interface{}) {
	fmt.Fprintf(l, "warning: "+format+"\n", args...)
}

// Fatalfln logs a formatted line, prefixed with `FATAL: `.
func (l *Logger) Fatalfln(format string, args ...interface{}) {
	fmt.Fprintf(l, "FATAL: "+format+"\n", args...)
}
