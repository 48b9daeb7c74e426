// Package monitoring holds the diagnostic logging hook used by the internal
// packages. User-facing output is written by the tools themselves.
package monitoring

import (
	"log"

	"github.com/google/uuid"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests mute it with SetLogger(nil).
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// NewRunID returns a fresh identifier used to correlate the log lines of a
// single tool invocation.
func NewRunID() string {
	return uuid.NewString()
}

// RunLogger returns a logger that prefixes every line with the short form of
// runID. It resolves Logf at call time so a later SetLogger still applies.
func RunLogger(runID string) func(format string, v ...interface{}) {
	prefix := runID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return func(format string, v ...interface{}) {
		Logf("[%s] "+format, append([]interface{}{prefix}, v...)...)
	}
}
