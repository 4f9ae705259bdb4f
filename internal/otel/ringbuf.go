package otel

import (
	"maps"
	"sync"
)

// DefaultRingSize is the default ring buffer capacity.
const DefaultRingSize = 1024

// RingBuffer keeps the most recent Events in memory for the debug overlay.
// Goroutine-safe for concurrent Push and read operations.
type RingBuffer struct {
	mu    sync.Mutex
	buf   []Event
	size  int
	head  int // next write position
	count int // number of valid entries (0..size)
}

// TierKey identifies one tier of one category's chain.
type TierKey struct {
	Category string
	Tier     string
}

// TierCount tallies the outcomes recorded for a tier.
type TierCount struct {
	Success int
	Failure int
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{
		buf:  make([]Event, size),
		size: size,
	}
}

// Push adds an event, overwriting the oldest if full. The Extra map is
// copied so later mutation by the emitter does not leak into the buffer.
func (r *RingBuffer) Push(e Event) {
	if e.Extra != nil {
		e.Extra = maps.Clone(e.Extra)
	}
	r.mu.Lock()
	r.buf[r.head] = e
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
	r.mu.Unlock()
}

// each calls fn for the newest n events, oldest first. Caller holds r.mu.
func (r *RingBuffer) each(n int, fn func(e *Event)) {
	if n > r.count {
		n = r.count
	}
	start := (r.head - n + r.size) % r.size
	for i := 0; i < n; i++ {
		fn(&r.buf[(start+i)%r.size])
	}
}

// Snapshot returns a copy of all events in chronological order (oldest first).
func (r *RingBuffer) Snapshot() []Event {
	return r.Last(r.size)
}

// Last returns the N most recent events in chronological order.
// If n > count, returns all events. If n <= 0, returns nil.
func (r *RingBuffer) Last(n int) []Event {
	if n <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return nil
	}
	out := make([]Event, 0, min(n, r.count))
	r.each(n, func(e *Event) { out = append(out, *e) })
	return out
}

// Len returns the number of events currently in the buffer.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return r.size
}

// Stats returns counts by EventKind over all buffered events.
func (r *RingBuffer) Stats() map[EventKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[EventKind]int)
	r.each(r.count, func(e *Event) { counts[e.Kind]++ })
	return counts
}

// TierStats tallies tier.success and tier.failure events per category and tier.
func (r *RingBuffer) TierStats() map[TierKey]TierCount {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[TierKey]TierCount)
	r.each(r.count, func(e *Event) {
		if e.Kind != KindTierSuccess && e.Kind != KindTierFailure {
			return
		}
		k := TierKey{Category: e.Category, Tier: e.Tier}
		c := counts[k]
		if e.Kind == KindTierSuccess {
			c.Success++
		} else {
			c.Failure++
		}
		counts[k] = c
	})
	return counts
}
