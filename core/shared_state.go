package core

import "sync/atomic"

// sharedState is the record shared between a Pool and every Spawner derived
// from it: the owner identity, the pending queue, and the wake signal. The
// pending queue's mutex is the only lock in the scheduler; task execution
// itself is confined to the owning goroutine and needs none.
type sharedState struct {
	ownerID int64 // fixed at pool construction, never changes
	wake    Waker
	pending *entryQueue

	name    string
	metrics Metrics

	nextID       atomic.Uint64
	disconnected atomic.Bool
	poisoned     atomic.Bool

	spawned   atomic.Uint64
	completed atomic.Uint64
	panicked  atomic.Uint64
	rejected  atomic.Uint64
}

func newSharedState(ownerID int64, wake Waker, name string, metrics Metrics) *sharedState {
	return &sharedState{
		ownerID: ownerID,
		wake:    wake,
		pending: newEntryQueue(),
		name:    name,
		metrics: metrics,
	}
}

// enqueue appends a future to the tail of the pending queue and fires the
// wake signal. It is the single spawn path, shared by every Spawner.
func (s *sharedState) enqueue(f Future) (TaskID, error) {
	if s.disconnected.Load() {
		s.rejected.Add(1)
		s.metrics.RecordSpawnRejected(s.name, "disconnected")
		return 0, ErrDisconnected
	}
	if s.poisoned.Load() {
		s.rejected.Add(1)
		s.metrics.RecordSpawnRejected(s.name, "poisoned")
		return 0, ErrPoisoned
	}

	id := TaskID(s.nextID.Add(1))
	s.pending.Push(entry{id: id, future: f})
	s.spawned.Add(1)
	s.metrics.RecordTaskSpawned(s.name)

	// The wake fires outside the queue lock. A spawn from inside a running
	// poll (reentrant spawn on the owning goroutine) must never re-enter a
	// held critical section through its own wake.
	s.wake.Wake()
	s.metrics.RecordWake(s.name)
	return id, nil
}
