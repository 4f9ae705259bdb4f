// Package coord runs date resolution off the UI event loop for RetroDay.
//
// The Orchestrator validates a requested date synchronously, then hands
// Bubble Tea a command that aggregates the bundle in the background. The
// result comes back as a ui.BundleResolved message, so presentation state is
// only ever touched from the program's Update loop. Every request carries a
// generation number and only the newest one is accepted.
package coord

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/retroday/internal/calendar"
	"github.com/abelbrown/retroday/internal/facts"
	"github.com/abelbrown/retroday/internal/otel"
	"github.com/abelbrown/retroday/internal/ui"
)

// State is the orchestrator's lifecycle position for the latest request.
type State int

const (
	Idle State = iota
	Validating
	Resolving
	Delivered
	Rejected
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Resolving:
		return "resolving"
	case Delivered:
		return "delivered"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// TerminalFault is an unexpected error or panic that escaped aggregation.
// No partial bundle accompanies it.
type TerminalFault struct {
	Date  string
	Err   error
	Stack string // set when the fault was a panic
}

func (f *TerminalFault) Error() string {
	return fmt.Sprintf("resolve %s: %v", f.Date, f.Err)
}

func (f *TerminalFault) Unwrap() error { return f.Err }

// aggregator interface for dependency injection (testing).
type aggregator interface {
	Aggregate(ctx context.Context, d calendar.Date) (facts.Bundle, error)
}

// Orchestrator owns the request lifecycle. Safe for concurrent use; in the
// TUI, Resolve and Deliver are called from Update and the returned command
// runs on a Bubble Tea goroutine.
type Orchestrator struct {
	agg    aggregator
	logger *otel.Logger

	mu     sync.Mutex
	gen    uint64
	state  State
	cancel context.CancelFunc // cancels the in-flight request, nil when none
}

// New creates an Orchestrator. A nil logger discards events.
func New(agg aggregator, logger *otel.Logger) *Orchestrator {
	if logger == nil {
		logger = otel.NewNullLogger()
	}
	return &Orchestrator{agg: agg, logger: logger}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Generation returns the most recently issued generation, 0 before any request.
func (o *Orchestrator) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen
}

// Resolve validates the date and, if valid, returns a command that resolves
// it in the background together with the request's generation. An invalid
// date is returned as a *calendar.InvalidDateError with no command and no
// background work. A new request cancels any request still in flight.
func (o *Orchestrator) Resolve(year, month, day int) (tea.Cmd, uint64, error) {
	o.mu.Lock()
	o.state = Validating
	o.mu.Unlock()

	d, err := calendar.New(year, month, day)
	if err != nil {
		o.mu.Lock()
		o.state = Rejected
		o.mu.Unlock()
		o.logger.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindResolveRejected, Comp: "coord",
			Date: fmt.Sprintf("%04d-%02d-%02d", year, month, day), Err: err.Error()})
		return nil, 0, err
	}

	ctx, gen := o.begin()
	return func() tea.Msg {
		return o.run(ctx, gen, d)
	}, gen, nil
}

// begin issues a new generation and cancels the previous request.
func (o *Orchestrator) begin() (context.Context, uint64) {
	ctx, cancel := context.WithCancel(context.Background())

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.gen++
	gen := o.gen
	o.cancel = cancel
	o.state = Resolving
	o.mu.Unlock()

	return ctx, gen
}

// run aggregates the bundle and converts anything unexpected into a
// TerminalFault. It never panics.
func (o *Orchestrator) run(ctx context.Context, gen uint64, d calendar.Date) (msg ui.BundleResolved) {
	start := time.Now()
	msg = ui.BundleResolved{Gen: gen, Date: d.ISO()}

	o.logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindResolveStart, Comp: "coord", Gen: gen, Date: d.ISO()})

	defer func() {
		if r := recover(); r != nil {
			msg.Bundle = facts.Bundle{}
			msg.Err = &TerminalFault{Date: d.ISO(), Err: fmt.Errorf("panic: %v", r), Stack: string(debug.Stack())}
		}
		msg.Dur = time.Since(start)
	}()

	bundle, err := o.agg.Aggregate(ctx, d)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			// Superseded; the generation check discards this message.
			msg.Err = err
			return msg
		}
		msg.Err = &TerminalFault{Date: d.ISO(), Err: err}
		return msg
	}
	msg.Bundle = bundle
	return msg
}

// Accept reports whether gen is the most recent generation.
func (o *Orchestrator) Accept(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen != 0 && gen == o.gen
}

// Deliver records the outcome of a resolved message. It returns false for a
// stale generation, in which case the caller must drop the message.
func (o *Orchestrator) Deliver(msg ui.BundleResolved) bool {
	o.mu.Lock()
	if msg.Gen == 0 || msg.Gen != o.gen {
		latest := o.gen
		o.mu.Unlock()
		o.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindResolveStale, Comp: "coord",
			Gen: msg.Gen, Date: msg.Date, Msg: fmt.Sprintf("latest generation is %d", latest)})
		return false
	}
	o.cancel = nil
	if msg.Err != nil {
		o.state = Failed
	} else {
		o.state = Delivered
	}
	o.mu.Unlock()

	if msg.Err != nil {
		o.logger.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindResolveFault, Comp: "coord",
			Gen: msg.Gen, Date: msg.Date, Dur: msg.Dur, Err: msg.Err.Error()})
		return true
	}
	o.logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindResolveComplete, Comp: "coord",
		Gen: msg.Gen, Date: msg.Date, Dur: msg.Dur, Count: len(msg.Bundle.Attempts)})
	return true
}

// Run resolves d synchronously, for the one-shot CLI path. The result goes
// through the same generation bookkeeping as the TUI path.
func (o *Orchestrator) Run(ctx context.Context, d calendar.Date) (facts.Bundle, error) {
	reqCtx, gen := o.begin()

	stop := context.AfterFunc(ctx, o.Cancel)
	defer stop()

	msg := o.run(reqCtx, gen, d)
	if !o.Deliver(msg) {
		return facts.Bundle{}, context.Canceled
	}
	if msg.Err != nil {
		return facts.Bundle{}, msg.Err
	}
	return msg.Bundle, nil
}

// Cancel aborts the in-flight request, if any. Call on shutdown.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}
