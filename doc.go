// Package wakepool provides a single-consumer cooperative task pool for Go.
//
// The pool lets suspendable tasks (futures) make progress interleaved with a
// blocking event loop, without ever blocking the goroutine that owns that
// loop. Work may be submitted from any goroutine; execution happens
// exclusively on the one owning goroutine, driven by a cross-goroutine wake
// notification that interrupts the owner's blocking wait.
//
// # Quick Start
//
// Start a Loop and spawn futures from anywhere:
//
//	loop := wakepool.NewLoop()
//	loop.Start()
//	defer loop.Stop()
//
//	sp := loop.Spawner()
//	sp.SpawnFunc(func(w wakepool.Waker) wakepool.Poll {
//		// Runs on the loop goroutine.
//		return wakepool.PollReady
//	})
//
// # Key Concepts
//
// Future: an incrementally advanceable unit of work. Each poll either
// finishes (PollReady) or suspends (PollPending) after arranging, via the
// provided Waker, to be re-polled when its external event fires.
//
// Pool: owns the executing futures and drains them with RunUntilStalled.
// Bound at construction to its owning goroutine; only that goroutine ever
// polls, so task state needs no locking.
//
// Spawner: a cloneable, goroutine-safe submission handle. Spawners may
// outlive their pool; operations then return ErrDisconnected.
//
// Loop: the blocking wait/dispatch collaborator. One iteration blocks until
// a wake or an event arrives, dispatches the event, then drains the pool
// exactly once. Embedders with their own native loop can skip Loop and
// drive a Pool directly.
//
// # Thread Safety
//
// Spawn from anywhere, poll from exactly one place. Because polling never
// leaves the owning goroutine, resources owned by a task need no locks; the
// only shared mutable state is the pending queue, protected by one mutex
// with minimal critical sections.
//
// # Delays
//
// The pool has no timer facility. Delays are ordinary suspending futures
// layered on top: Sleep starts a detached timer goroutine per delay, and
// DelayScheduler multiplexes many delays onto one goroutine.
//
// For more details, see the core package documentation.
package wakepool
