package otel

import (
	"os"
	"strings"
	"sync/atomic"
)

// traceEnabled gates per-message tracing in the UI. Read on every Update,
// so it is a single atomic load.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(parseTrace(os.Getenv("RETRODAY_TRACE")))
}

// parseTrace treats any value other than empty, "0", "false" or "off" as on.
func parseTrace(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

// TraceEnabled reports whether RETRODAY_TRACE turned on message tracing.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled overrides the flag in tests.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
