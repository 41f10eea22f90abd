// Package monitoring holds the swappable diagnostic loggers shared by the
// indexing packages.
package monitoring

import (
	"log"
	"sync/atomic"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// may be replaced with SetLogger, for example to mute output in tests.
var Logf func(format string, v ...interface{}) = log.Printf

var debug atomic.Bool

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebug turns Debugf output on or off.
func SetDebug(on bool) { debug.Store(on) }

// DebugEnabled reports whether Debugf output is on.
func DebugEnabled() bool { return debug.Load() }

// Debugf logs through Logf when debug output is on.
func Debugf(format string, v ...interface{}) {
	if debug.Load() {
		Logf(format, v...)
	}
}
