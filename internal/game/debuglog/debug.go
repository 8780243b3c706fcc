// Package debuglog gates hot-path debug logging of the game packages.
package debuglog

import "sync/atomic"

// enabled controls whether per-tick debug logging is emitted.
// This is a package-level flag to avoid the overhead of checking the slog
// level on every shot and state transition.
// Set via Enable() during initialization based on config.LogLevel.
var enabled atomic.Bool

// Enable enables or disables debug logging for weapon and grav-gun code.
// Must be called during initialization (e.g., from main.go after parsing config).
func Enable(on bool) {
	enabled.Store(on)
}

// Enabled returns true if debug logging is enabled.
// Use this to guard debug log calls on the tick path:
//
//	if debuglog.Enabled() {
//	    slog.Debug("weapon fired", "weapon", w.Name())
//	}
func Enabled() bool {
	return enabled.Load()
}
