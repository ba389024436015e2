package core

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

// Pool is a single-consumer cooperative task pool. It is bound at
// construction to the goroutine that created it (the owning goroutine):
// only that goroutine may drain and poll, while arbitrarily many producer
// goroutines submit work through Spawner handles. Polling never leaves the
// owning goroutine, so no future is ever touched from two goroutines at
// once and task execution needs no locking.
//
// Exactly one Pool should exist per owning goroutine. RunUntilStalled and
// Close enforce the affinity with a runtime goroutine-id check and panic on
// a mismatch; Spawner and the stats accessors are safe from any goroutine.
type Pool struct {
	shared    *sharedState
	executing []entry
	closed    bool

	panicHandler PanicHandler
	metrics      Metrics
	logger       Logger
	history      *pollHistory

	// mirrored for cross-goroutine stats reads
	executingCount atomic.Int32
}

// New creates a pool owned by the calling goroutine, with default config.
func New() *Pool {
	return NewWithConfig(nil)
}

// NewWithConfig creates a pool owned by the calling goroutine. A nil config
// and nil config fields fall back to defaults; when no wake signal is
// injected the pool builds a ChannelWakeSignal bound to the owner.
func NewWithConfig(cfg *PoolConfig) *Pool {
	if cfg == nil {
		cfg = DefaultPoolConfig()
	}

	name := cfg.Name
	if name == "" {
		name = "pool"
	}
	panicHandler := cfg.PanicHandler
	if panicHandler == nil {
		panicHandler = &DefaultPanicHandler{}
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &NilMetrics{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = &NoOpLogger{}
	}

	ownerID := goid.Get()
	wake := cfg.Wake
	if wake == nil {
		wake = NewChannelWakeSignal(ownerID)
	}

	return &Pool{
		shared:       newSharedState(ownerID, wake, name, metrics),
		panicHandler: panicHandler,
		metrics:      metrics,
		logger:       logger,
		history:      newPollHistory(cfg.HistoryCapacity),
	}
}

// Name returns the pool's configured name.
func (p *Pool) Name() string {
	return p.shared.name
}

// Spawner returns a new submission handle backed by this pool's shared
// state. Cheap and side-effect-free; callable any number of times from any
// goroutine.
func (p *Pool) Spawner() Spawner {
	return Spawner{shared: p.shared}
}

// Wake returns the pool's wake signal. An embedding event loop uses it as
// the blocking-wait primitive; it is also the Waker every poll receives.
func (p *Pool) Wake() Waker {
	return p.shared.wake
}

// OwnerID returns the id of the owning goroutine.
func (p *Pool) OwnerID() int64 {
	return p.shared.ownerID
}

// RunUntilStalled moves all pending futures into the executing sequence and
// polls them to quiescence. It never blocks: with nothing to do it returns
// immediately, and otherwise it keeps making passes over the executing
// sequence only while at least one future reaches Ready per pass.
//
// Each future is polled at most once per pass, so a future that stays
// Pending cannot starve the others within a single call; it simply stays in
// the executing sequence awaiting its wake.
//
// Must be called from the owning goroutine.
func (p *Pool) RunUntilStalled() {
	p.assertOwner("RunUntilStalled")
	if p.closed {
		return
	}

	// A panic escaping the drain machinery itself (task panics are recovered
	// at the poll boundary instead) leaves the executing sequence in
	// an unknown state. Poison the shared state so spawners fail fast
	// instead of queueing into a corrupted pool, then let the panic travel.
	defer func() {
		if r := recover(); r != nil {
			p.shared.poisoned.Store(true)
			panic(r)
		}
	}()

	// Move the pending queue to the tail of the executing sequence,
	// preserving order. The queue lock is released before any poll runs: a
	// poll may spawn reentrantly, and that spawn takes the same lock.
	if batch := p.shared.pending.PopAll(); len(batch) != 0 {
		p.executing = append(p.executing, batch...)
	}
	p.metrics.RecordQueueDepth(p.shared.name, p.shared.pending.Len(), len(p.executing))

	for {
		progress := false
		for i := range p.executing {
			e := &p.executing[i]
			if e.done {
				continue
			}
			if p.pollOne(e) == PollReady {
				e.done = true
				progress = true
			}
		}
		if !progress {
			break
		}
		p.compactDone()
	}

	p.executingCount.Store(int32(len(p.executing)))
}

// pollOne advances a single future, recovering task panics at the poll
// boundary. A panicked future is dropped (reported as Ready) rather than
// retried; the panic is routed to the pool's PanicHandler.
func (p *Pool) pollOne(e *entry) (result Poll) {
	record := PollRecord{TaskID: e.id, StartedAt: time.Now()}

	defer func() {
		record.Duration = time.Since(record.StartedAt)
		p.metrics.RecordPollDuration(p.shared.name, record.Duration)

		if r := recover(); r != nil {
			stack := make([]byte, 8192)
			stack = stack[:runtime.Stack(stack, false)]

			p.shared.panicked.Add(1)
			p.metrics.RecordTaskPanic(p.shared.name, r)
			p.logger.Error("task panicked during poll",
				F("pool", p.shared.name), F("task", e.id), F("panic", r))
			p.panicHandler.HandlePanic(p.shared.name, e.id, r, stack)

			record.Panicked = true
			result = PollReady
		}

		record.Result = result
		p.history.Add(record)
	}()

	result = e.future.Poll(p.shared.wake)
	if result == PollReady {
		p.shared.completed.Add(1)
		p.metrics.RecordTaskCompleted(p.shared.name)
	}
	return result
}

// compactDone removes completed entries in place, preserving the order of
// the survivors and releasing the dropped future references.
func (p *Pool) compactDone() {
	kept := p.executing[:0]
	for _, e := range p.executing {
		if !e.done {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(p.executing); i++ {
		p.executing[i] = entry{}
	}
	p.executing = kept
}

// Close disconnects every spawner and discards all pending and executing
// futures by dropping the references. No cleanup callback runs; a future
// that never reached Ready is simply never polled again. Idempotent.
//
// Must be called from the owning goroutine.
func (p *Pool) Close() {
	p.assertOwner("Close")
	if p.closed {
		return
	}
	p.closed = true
	p.shared.disconnected.Store(true)
	p.shared.pending.Clear()
	for i := range p.executing {
		p.executing[i] = entry{}
	}
	p.executing = nil
	p.executingCount.Store(0)
}

// IsClosed reports whether the pool has been closed. Safe from any goroutine.
func (p *Pool) IsClosed() bool {
	return p.shared.disconnected.Load()
}

// PendingTaskCount returns the number of spawned futures not yet moved into
// the executing sequence. Safe from any goroutine.
func (p *Pool) PendingTaskCount() int {
	return p.shared.pending.Len()
}

// ExecutingTaskCount returns the number of futures in the executing
// sequence as of the last drain. Safe from any goroutine.
func (p *Pool) ExecutingTaskCount() int {
	return int(p.executingCount.Load())
}

// Stats returns a snapshot of the pool's counters. Safe from any goroutine.
func (p *Pool) Stats() PoolStats {
	stats := PoolStats{
		Name:      p.shared.name,
		Pending:   p.shared.pending.Len(),
		Executing: int(p.executingCount.Load()),
		Spawned:   p.shared.spawned.Load(),
		Completed: p.shared.completed.Load(),
		Panicked:  p.shared.panicked.Load(),
		Rejected:  p.shared.rejected.Load(),
		Closed:    p.shared.disconnected.Load(),
	}
	if cws, ok := p.shared.wake.(*ChannelWakeSignal); ok {
		stats.Wakes = cws.WakeCount()
	}
	return stats
}

// RecentPolls returns up to limit recent poll records, most recent first.
// limit <= 0 returns all retained records. Safe from any goroutine.
func (p *Pool) RecentPolls(limit int) []PollRecord {
	return p.history.Recent(limit)
}

func (p *Pool) assertOwner(op string) {
	if id := goid.Get(); id != p.shared.ownerID {
		panic(fmt.Sprintf("wakepool: %s called from goroutine %d, but pool %q is owned by goroutine %d",
			op, id, p.shared.name, p.shared.ownerID))
	}
}
