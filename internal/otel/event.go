// Package otel provides structured observability for RetroDay.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer provides live in-memory inspection for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Request lifecycle
	KindResolveStart    EventKind = "resolve.start"
	KindResolveComplete EventKind = "resolve.complete"
	KindResolveRejected EventKind = "resolve.rejected"
	KindResolveFault    EventKind = "resolve.fault"
	KindResolveStale    EventKind = "resolve.stale"

	// Resolver tiers
	KindTierAttempt   EventKind = "tier.attempt"
	KindTierSuccess   EventKind = "tier.success"
	KindTierFailure   EventKind = "tier.failure"
	KindCategoryPanic EventKind = "tier.category_panic"

	// Upstream diagnostics
	KindWikiNotFound  EventKind = "wiki.not_found"
	KindWikiTransport EventKind = "wiki.transport"

	// Image cache
	KindCacheHit   EventKind = "cache.hit"
	KindCacheStore EventKind = "cache.store"
	KindCacheError EventKind = "cache.error"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindConfig   EventKind = "sys.config"
	KindError    EventKind = "sys.error"

	// Trace events
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "coord", "resolve", "cache", "ui", "main"
	SessionID string         `json:"session_id,omitempty"` // random hex, same for entire app run
	Gen       uint64         `json:"gen,omitempty"`        // request generation
	Date      string         `json:"date,omitempty"`       // YYYY-MM-DD being resolved
	Category  string         `json:"category,omitempty"`
	Tier      string         `json:"tier,omitempty"`
	Dur       time.Duration  `json:"-"`                // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Source    string         `json:"source,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`   // free text
	Extra     map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
