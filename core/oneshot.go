package core

import "sync"

// Oneshot is a single-use completion channel in Future form. The producer
// side calls Complete from any goroutine; the consumer side is polled on
// the pool's owning goroutine and yields Ready once the value is in. This
// is the bridge between external events (timers, IO goroutines, replies)
// and suspended tasks.
//
// Happens-before: the value written by Complete is visible to any poll that
// observes Ready; the internal mutex publishes it.
type Oneshot[T any] struct {
	mu    sync.Mutex
	done  bool
	value T
	waker Waker
}

var _ Future = (*Oneshot[struct{}])(nil)

// NewOneshot creates an incomplete Oneshot.
func NewOneshot[T any]() *Oneshot[T] {
	return &Oneshot[T]{}
}

// Complete stores the value and wakes the most recent poller. Only the
// first call wins; later calls are ignored. Safe from any goroutine.
func (o *Oneshot[T]) Complete(v T) {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.done = true
	o.value = v
	w := o.waker
	o.waker = nil
	o.mu.Unlock()

	// Wake after unlock; the waker may re-enter scheduler state.
	if w != nil {
		w.Wake()
	}
}

// Poll implements Future. While incomplete it records the waker so Complete
// can request a re-poll; each poll replaces the previously recorded waker.
func (o *Oneshot[T]) Poll(w Waker) Poll {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.done {
		return PollReady
	}
	o.waker = w
	return PollPending
}

// Value returns the completed value, if any.
func (o *Oneshot[T]) Value() (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value, o.done
}

// IsCompleted reports whether Complete has been called.
func (o *Oneshot[T]) IsCompleted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}
