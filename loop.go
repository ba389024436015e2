package wakepool

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"

	"github.com/Swind/go-wakepool/core"
)

var (
	// ErrLoopClosed is returned by Post once the loop has been shut down.
	ErrLoopClosed = errors.New("wakepool: loop closed")

	// ErrLoopNotStarted is returned by operations that need the loop
	// goroutine (and its pool) to exist.
	ErrLoopNotStarted = errors.New("wakepool: loop not started")
)

// Event is a unit of external input dispatched by the Loop. A wake carries
// no Event at all; it only interrupts the blocking wait.
type Event struct {
	Name    string
	Payload any
}

// Handler processes one dispatched event on the loop goroutine.
type Handler func(ev Event)

// LoopConfig holds configuration options for a Loop.
// All fields are optional; zero values select default implementations.
type LoopConfig struct {
	// Name identifies the loop (and its pool) in logs and metrics.
	// Defaults to "loop".
	Name string

	// PanicHandler handles panics recovered at the dispatch boundary and at
	// poll boundaries. Defaults to FatalPanicHandler: a panic crossing the
	// dispatch boundary would unwind into the wait machinery, so by default
	// the process aborts instead.
	PanicHandler core.PanicHandler

	// Logger receives loop diagnostics. Defaults to DefaultLogger.
	Logger core.Logger

	// Metrics is forwarded to the embedded pool. Defaults to NilMetrics.
	Metrics core.Metrics

	// EventBuffer is the capacity of the event channel. Defaults to 64.
	EventBuffer int
}

// DefaultLoopConfig returns a config with default handlers.
func DefaultLoopConfig() *LoopConfig {
	return &LoopConfig{
		Name:         "loop",
		PanicHandler: &core.FatalPanicHandler{},
		Logger:       core.NewDefaultLogger(),
		Metrics:      &core.NilMetrics{},
		EventBuffer:  64,
	}
}

// LoopStats is a point-in-time snapshot of loop state.
type LoopStats struct {
	Name       string
	Dispatched uint64
	Running    bool
	Pool       core.PoolStats
}

// Loop owns a Pool on a dedicated goroutine and implements the blocking
// wait / dispatch / drain contract the pool expects: block until a wake or
// an event arrives, dispatch the event through its handler (a bare wake
// dispatches nothing), then run the pool until it stalls, exactly once per
// iteration. The loop never blocks while scheduler work is pending.
//
// Spawns and Posts may come from any goroutine; handlers and task polls run
// only on the loop goroutine.
type Loop struct {
	name string

	handlersMu sync.RWMutex
	handlers   map[string]Handler

	events  chan Event
	quit    chan struct{}
	stopped chan struct{}
	ready   chan struct{}

	// written once on the loop goroutine before ready closes
	pool    *core.Pool
	spawner core.Spawner
	wake    *core.ChannelWakeSignal

	panicHandler core.PanicHandler
	logger       core.Logger
	metrics      core.Metrics

	startOnce    sync.Once
	shutdownOnce sync.Once
	started      atomic.Bool
	closed       atomic.Bool

	dispatched atomic.Uint64
}

// NewLoop creates a loop with default config. Call Start to launch it.
func NewLoop() *Loop {
	return NewLoopWithConfig(nil)
}

// NewLoopWithConfig creates a loop with the given configuration.
func NewLoopWithConfig(cfg *LoopConfig) *Loop {
	if cfg == nil {
		cfg = DefaultLoopConfig()
	}

	name := cfg.Name
	if name == "" {
		name = "loop"
	}
	panicHandler := cfg.PanicHandler
	if panicHandler == nil {
		panicHandler = &core.FatalPanicHandler{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = core.NewDefaultLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &core.NilMetrics{}
	}
	eventBuffer := cfg.EventBuffer
	if eventBuffer <= 0 {
		eventBuffer = 64
	}

	return &Loop{
		name:         name,
		handlers:     make(map[string]Handler),
		events:       make(chan Event, eventBuffer),
		quit:         make(chan struct{}),
		stopped:      make(chan struct{}),
		ready:        make(chan struct{}),
		panicHandler: panicHandler,
		logger:       logger,
		metrics:      metrics,
	}
}

// OnEvent registers (or replaces) the handler for events with the given
// name. May be called before or after Start, from any goroutine.
func (l *Loop) OnEvent(name string, h Handler) {
	l.handlersMu.Lock()
	defer l.handlersMu.Unlock()
	if h == nil {
		delete(l.handlers, name)
		return
	}
	l.handlers[name] = h
}

// Start launches the dedicated loop goroutine and blocks until the pool is
// constructed on it. Repeated calls are no-ops.
func (l *Loop) Start() {
	l.startOnce.Do(func() {
		go l.run()
		<-l.ready
		l.started.Store(true)
	})
}

// Spawner returns a submission handle for the loop's pool.
// It panics if Start has not been called.
func (l *Loop) Spawner() core.Spawner {
	if !l.started.Load() {
		panic("wakepool: Loop.Spawner called before Start")
	}
	return l.spawner
}

// Post delivers an event to the loop for dispatch. Safe from any goroutine,
// including from a handler or task on the loop goroutine (the event channel
// is buffered; Post fails with ErrLoopClosed rather than blocking forever
// on a stopped loop).
func (l *Loop) Post(ev Event) error {
	if l.closed.Load() {
		return ErrLoopClosed
	}
	select {
	case l.events <- ev:
		return nil
	case <-l.quit:
		return ErrLoopClosed
	}
}

// Wake forces one loop iteration without an event, exactly like a spawner's
// wake notification.
func (l *Loop) Wake() error {
	if !l.started.Load() {
		return ErrLoopNotStarted
	}
	if l.closed.Load() {
		return ErrLoopClosed
	}
	l.wake.Wake()
	return nil
}

// WaitIdle blocks until every task spawned before the call has been
// processed to quiescence. Implemented by spawning a barrier future and
// waiting for it to run; the pending queue is FIFO, so when the barrier
// runs, everything spawned before it has been drained at least once.
//
// Events posted to the loop are not waited for, only tasks.
func (l *Loop) WaitIdle(ctx context.Context) error {
	if !l.started.Load() {
		return ErrLoopNotStarted
	}

	done := make(chan struct{})
	err := l.spawner.SpawnFunc(func(core.Waker) core.Poll {
		close(done)
		return core.PollReady
	})
	if err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown marks the loop as closed and signals the loop goroutine to exit.
// Unlike Stop, it does not wait, so it is safe to call from a handler or
// task running on the loop goroutine itself.
func (l *Loop) Shutdown() {
	l.shutdownOnce.Do(func() {
		l.closed.Store(true)
		close(l.quit)
	})
}

// Stop shuts the loop down and waits for the loop goroutine to exit.
// Queued futures are discarded. Must not be called from a handler or task
// on the loop goroutine; use Shutdown there.
func (l *Loop) Stop() {
	l.Shutdown()
	if l.started.Load() {
		<-l.stopped
	}
}

// WaitShutdown blocks until the loop goroutine has exited, whether because
// of Stop or a Shutdown issued from inside a handler or task.
func (l *Loop) WaitShutdown(ctx context.Context) error {
	if !l.started.Load() {
		return ErrLoopNotStarted
	}
	select {
	case <-l.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop goroutine is alive.
func (l *Loop) IsRunning() bool {
	if !l.started.Load() {
		return false
	}
	select {
	case <-l.stopped:
		return false
	default:
		return true
	}
}

// Stats returns a snapshot of loop and pool state. Safe from any goroutine.
func (l *Loop) Stats() LoopStats {
	stats := LoopStats{
		Name:       l.name,
		Dispatched: l.dispatched.Load(),
		Running:    l.IsRunning(),
	}
	if l.started.Load() {
		stats.Pool = l.pool.Stats()
	}
	return stats
}

// run is the loop goroutine: it constructs the pool (binding ownership to
// itself), then iterates wait → dispatch → drain until shut down.
func (l *Loop) run() {
	defer close(l.stopped)

	l.wake = core.NewChannelWakeSignal(goid.Get())
	l.pool = core.NewWithConfig(&core.PoolConfig{
		Name:         l.name,
		PanicHandler: l.panicHandler,
		Metrics:      l.metrics,
		Logger:       l.logger,
		Wake:         l.wake,
	})
	l.spawner = l.pool.Spawner()
	close(l.ready)

	for {
		var ev Event
		var haveEvent bool

		if l.pool.PendingTaskCount() > 0 {
			// Work is already queued: collect control traffic without
			// blocking, then go straight to the drain. This is the
			// pending-work check that makes a lost wake impossible.
			select {
			case <-l.quit:
				l.pool.Close()
				return
			case ev = <-l.events:
				haveEvent = true
			case <-l.wake.Notified():
			default:
			}
		} else {
			select {
			case <-l.quit:
				l.pool.Close()
				return
			case ev = <-l.events:
				haveEvent = true
			case <-l.wake.Notified():
				// Bare wake: nothing to dispatch, just drain.
			}
		}

		if haveEvent {
			l.dispatch(ev)
		}
		l.pool.RunUntilStalled()
	}
}

// dispatch runs one event handler, recovering panics at the boundary: the
// frames above belong to the wait machinery, and unwinding into them is
// never allowed. The configured PanicHandler decides between logging and
// aborting the process.
func (l *Loop) dispatch(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			l.panicHandler.HandlePanic(l.name, 0, r, debug.Stack())
		}
	}()

	l.handlersMu.RLock()
	h := l.handlers[ev.Name]
	l.handlersMu.RUnlock()

	if h == nil {
		l.logger.Warn("no handler registered for event", core.F("event", ev.Name))
		return
	}

	l.dispatched.Add(1)
	h(ev)
}
