// Package obslog provides library-internal structured tracing for the
// dataflow passes (dominator computation, phi placement, propagation
// iteration count, bypass rewrite chains). It defaults to a no-op
// logger so consumers of the decompiler core pay nothing unless they
// opt in.
package obslog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.RWMutex
	log *zap.SugaredLogger = zap.NewNop().Sugar()
)

// Set installs l as the package-level logger. Passing nil restores
// the no-op default.
func Set(l *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	log = l
}

// Get returns the current package-level logger.
func Get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debugw logs a structured debug-level message through the current
// logger. Safe to call even when no logger has been installed.
func Debugw(msg string, kv ...interface{}) {
	Get().Debugw(msg, kv...)
}

// Warnw logs a structured warning-level message through the current
// logger.
func Warnw(msg string, kv ...interface{}) {
	Get().Warnw(msg, kv...)
}
