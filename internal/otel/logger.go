package otel

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// queueSize bounds the events waiting for the writer. A full queue drops.
const queueSize = 4096

// line is one queued event: the encoded JSONL bytes for the file and the
// Event itself for the ring buffer, which keeps Dur.
type line struct {
	data []byte
	ev   Event
}

// Logger appends Events to a JSONL stream from a single writer goroutine so
// emitters on the resolve path never block on disk. Safe for concurrent use.
type Logger struct {
	session string
	queue   chan line
	w       io.Writer
	file    *os.File // owned when opened by OpenFile

	mu   sync.Mutex
	ring *RingBuffer

	dropped   atomic.Uint64
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewLogger starts a Logger writing to w. Close flushes and stops it.
func NewLogger(w io.Writer) *Logger {
	var id [8]byte
	_, _ = rand.Read(id[:])

	l := &Logger{
		session: fmt.Sprintf("%x", id[:]),
		queue:   make(chan line, queueSize),
		w:       w,
		done:    make(chan struct{}),
	}
	go l.run()
	return l
}

// OpenFile appends to the event log at path, creating its directory.
func OpenFile(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	l := NewLogger(f)
	l.file = f
	return l, nil
}

// NewNullLogger discards output but still feeds an attached ring buffer.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

func (l *Logger) run() {
	defer close(l.done)
	for ln := range l.queue {
		if _, err := l.w.Write(ln.data); err != nil {
			l.dropped.Add(1)
		}

		l.mu.Lock()
		ring := l.ring
		l.mu.Unlock()
		if ring != nil {
			ring.Push(ln.ev)
		}
	}
}

// Emit stamps Time (when unset) and the session id, then queues the event.
// It never blocks: a full queue or a closed logger counts a drop.
func (l *Logger) Emit(e Event) {
	// Close may close the queue between the flag check and the send.
	defer func() {
		if recover() != nil {
			l.dropped.Add(1)
		}
	}()

	if l.closed.Load() {
		l.dropped.Add(1)
		return
	}

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.session

	data, err := json.Marshal(e)
	if err != nil {
		l.dropped.Add(1)
		return
	}

	select {
	case l.queue <- line{data: append(data, '\n'), ev: e}:
	default:
		l.dropped.Add(1)
	}
}

func (l *Logger) Debug(kind EventKind, comp string, msg string) {
	l.Emit(Event{Level: LevelDebug, Kind: kind, Comp: comp, Msg: msg})
}

func (l *Logger) Info(kind EventKind, comp string, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

func (l *Logger) Warn(kind EventKind, comp string, msg string) {
	l.Emit(Event{Level: LevelWarn, Kind: kind, Comp: comp, Msg: msg})
}

// Error emits an error-level event. A nil err logs an empty err field.
func (l *Logger) Error(kind EventKind, comp string, err error) {
	e := Event{Level: LevelError, Kind: kind, Comp: comp}
	if err != nil {
		e.Err = err.Error()
	}
	l.Emit(e)
}

// Tier records the outcome of one resolver tier attempt for a date. A nil
// err is a success.
func (l *Logger) Tier(date, category, tier string, dur time.Duration, err error) {
	e := Event{Level: LevelInfo, Kind: KindTierSuccess, Comp: "resolve",
		Date: date, Category: category, Tier: tier, Dur: dur}
	if err != nil {
		e.Level = LevelWarn
		e.Kind = KindTierFailure
		e.Err = err.Error()
	}
	l.Emit(e)
}

// SetRingBuffer mirrors every written event into buf for the debug overlay.
func (l *Logger) SetRingBuffer(buf *RingBuffer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring = buf
}

// Dropped returns the number of events lost since creation.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// Close drains the queue, closes an owned file and reports drops on stderr.
// Idempotent. Emit calls racing with Close are dropped.
func (l *Logger) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.queue)
		<-l.done

		if l.file != nil {
			_ = l.file.Close()
		}
		if d := l.dropped.Load(); d > 0 {
			fmt.Fprintf(os.Stderr, "retroday: %d events dropped during session %s\n", d, l.session)
		}
	})
}
