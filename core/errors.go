package core

import "errors"

var (
	// ErrDisconnected is returned by Spawner operations once the owning pool
	// has been closed. The work is not queued; callers decide whether to
	// drop it or escalate.
	ErrDisconnected = errors.New("wakepool: pool disconnected")

	// ErrPoisoned is returned by Spawner operations after a panic escaped
	// the pool's own drain machinery while the shared queue may have been
	// left inconsistent. This signals an unrecoverable earlier failure;
	// spawns are refused rather than queued into a corrupted pool.
	ErrPoisoned = errors.New("wakepool: shared state poisoned by a previous panic")

	// ErrNilFuture is returned when a nil future is submitted.
	ErrNilFuture = errors.New("wakepool: nil future")
)
