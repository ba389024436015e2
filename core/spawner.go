package core

// Spawner is a cloneable, goroutine-safe handle for submitting futures to a
// Pool. Copies share the same target pool; a Spawner may be passed between
// goroutines freely and may outlive its pool, in which case operations
// return ErrDisconnected instead of queueing work.
//
// The zero value is a disconnected spawner.
type Spawner struct {
	shared *sharedState
}

// Spawn appends the future to the pool's pending queue and wakes the owning
// goroutine. Safe to call concurrently from any number of goroutines,
// including reentrantly from inside a running poll on the owning goroutine.
//
// Ordering among concurrent spawns from different goroutines is unspecified;
// spawns from a single goroutine retain their submission order.
func (s Spawner) Spawn(f Future) error {
	if f == nil {
		return ErrNilFuture
	}
	if s.shared == nil {
		return ErrDisconnected
	}
	_, err := s.shared.enqueue(f)
	return err
}

// SpawnFunc is a convenience wrapper around Spawn for plain poll functions.
func (s Spawner) SpawnFunc(fn func(w Waker) Poll) error {
	if fn == nil {
		return ErrNilFuture
	}
	return s.Spawn(FutureFunc(fn))
}

// IsConnected reports whether the owning pool is still accepting spawns.
// A true result is advisory only; the pool may close between the check and
// a subsequent Spawn.
func (s Spawner) IsConnected() bool {
	return s.shared != nil && !s.shared.disconnected.Load() && !s.shared.poisoned.Load()
}
