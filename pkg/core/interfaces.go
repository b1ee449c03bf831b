package core

import (
	"log"
	"os"
)

// Logger is the logging surface used throughout the renderer. Stage-boundary
// progress (BVH build, pass completion) is reported through it rather than
// written directly to stdout, so callers embedding the renderer can redirect
// or silence it.
type Logger interface {
	Printf(format string, args ...interface{})
}

// stdLogger adapts the standard library's *log.Logger to the Logger interface.
type stdLogger struct {
	l *log.Logger
}

func (s *stdLogger) Printf(format string, args ...interface{}) {
	s.l.Printf(format, args...)
}

// NewDefaultLogger returns a Logger that writes timestamped lines to stderr.
func NewDefaultLogger() Logger {
	return &stdLogger{l: log.New(os.Stderr, "", log.LstdFlags)}
}

// NopLogger discards everything written to it; useful in tests and library
// embeddings that don't want renderer progress output.
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}

// ProgressFunc reports stage-level build progress: stage name, current unit,
// and total units for that stage (e.g. "shape-bvh", 3, 12).
type ProgressFunc func(stage string, current, total int)
