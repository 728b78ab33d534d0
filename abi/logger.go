package abi

import "log"

// Logger is the minimal surface every subsystem logs developer errors and
// capacity exhaustion through (§7). *log.Logger satisfies it directly;
// tests can swap in one backed by a buffer to assert on log lines.
type Logger interface {
	Printf(format string, args ...any)
}

// DefaultLogger is used by any package constructor that receives a nil
// Logger.
func DefaultLogger() Logger { return log.Default() }
