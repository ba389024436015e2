package core

// Poll is the result of one attempt to advance a Future.
type Poll uint8

const (
	// PollPending: the future could not finish yet. It has arranged (via the
	// Waker it was handed) to be woken when it is worth polling again.
	PollPending Poll = iota

	// PollReady: the future finished. It is removed from the pool and must
	// never be polled again.
	PollReady
)

func (p Poll) String() string {
	switch p {
	case PollPending:
		return "pending"
	case PollReady:
		return "ready"
	default:
		return "unknown"
	}
}

// TaskID identifies a spawned future within its pool. IDs are assigned at
// spawn time and are never reused by the same pool.
type TaskID uint64

// =============================================================================
// Waker: the notify capability handed to every poll
// =============================================================================

// Waker is a one-method notify capability. Calling Wake from any goroutine
// guarantees a future drain of the associated pool, and therefore at least
// one future poll attempt of the task that captured it. It does not
// guarantee immediacy or ordering relative to other wakes.
//
// Wake must never block and has no failure visible to callers.
type Waker interface {
	Wake()
}

// WakerFunc adapts a plain function to the Waker interface.
type WakerFunc func()

func (f WakerFunc) Wake() { f() }

// =============================================================================
// Future: the unit of asynchronous work
// =============================================================================

// Future is an incrementally advanceable unit of work. Poll attempts to make
// progress and returns PollReady once the work is finished. A future that
// returns PollPending must first store or invoke the provided Waker so the
// pool re-polls it when its external event fires.
//
// Poll is only ever invoked from the owning goroutine of the pool the future
// was spawned into, and never concurrently with itself.
type Future interface {
	Poll(w Waker) Poll
}

// FutureFunc adapts a plain function to the Future interface.
type FutureFunc func(w Waker) Poll

func (f FutureFunc) Poll(w Waker) Poll { return f(w) }
