package core

import (
	"sync/atomic"
	"time"
)

// RepeatingHandle controls the lifecycle of a repeating task.
type RepeatingHandle struct {
	stopped atomic.Bool
}

// Stop prevents further executions. The currently scheduled cycle ends
// quietly at its next poll; an execution already in progress is not
// interrupted.
func (h *RepeatingHandle) Stop() {
	h.stopped.Store(true)
}

// IsStopped reports whether Stop has been called.
func (h *RepeatingHandle) IsStopped() bool {
	return h.stopped.Load()
}

// SpawnRepeating schedules fn to run on the pool's owning goroutine every
// interval. The first run happens after initialDelay (zero means on the
// next drain). Delays come from ds when provided, falling back to one
// detached timer goroutine per gap otherwise.
//
// Each cycle is an ordinary future: it suspends on its delay, runs fn, and
// respawns itself for the next cycle. Stopping the handle or closing the
// pool ends the chain; a closed pool is detected by the failed respawn.
func SpawnRepeating(sp Spawner, ds *DelayScheduler, initialDelay, interval time.Duration, fn func()) (*RepeatingHandle, error) {
	if fn == nil {
		return nil, ErrNilFuture
	}

	h := &RepeatingHandle{}
	after := func(d time.Duration) Future {
		if ds != nil {
			return ds.After(d)
		}
		return Sleep(d)
	}

	var schedule func(delay time.Duration) error
	schedule = func(delay time.Duration) error {
		var wait Future
		if delay > 0 {
			wait = after(delay)
		}
		return sp.SpawnFunc(func(w Waker) Poll {
			if h.IsStopped() {
				return PollReady
			}
			if wait != nil && wait.Poll(w) == PollPending {
				return PollPending
			}
			fn()
			if !h.IsStopped() {
				// Pool gone mid-cycle: nothing left to reschedule onto.
				_ = schedule(interval)
			}
			return PollReady
		})
	}

	if err := schedule(initialDelay); err != nil {
		return nil, err
	}
	return h, nil
}
