package core

import "sync"

const defaultQueueCap = 16

// entry pairs a queued future with its bookkeeping state. Entries are moved
// between the pending queue and the pool's executing sequence by value;
// ownership transfers, never aliases.
type entry struct {
	id     TaskID
	future Future
	done   bool
}

// entryQueue is a mutex-protected FIFO of not-yet-started entries. Its mutex
// is the only lock in the scheduler: critical sections cover just the append
// and the drain, so a reentrant spawn from inside a poll can never deadlock.
type entryQueue struct {
	mu      sync.Mutex
	entries []entry
}

func newEntryQueue() *entryQueue {
	return &entryQueue{
		entries: make([]entry, 0, defaultQueueCap),
	}
}

// Push appends an entry at the tail, preserving submission order.
func (q *entryQueue) Push(e entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, e)
}

// PopAll removes and returns every queued entry in FIFO order. The returned
// slice is owned by the caller; the queue starts over with a fresh backing
// array so a large burst does not pin its capacity forever.
func (q *entryQueue) PopAll() []entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return nil
	}

	batch := q.entries
	q.entries = make([]entry, 0, defaultQueueCap)
	return batch
}

func (q *entryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *entryQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Clear drops all queued entries and releases the future references.
func (q *entryQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = make([]entry, 0, defaultQueueCap)
}
