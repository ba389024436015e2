package core

import "time"

// PollRecord captures one poll attempt of a task.
type PollRecord struct {
	TaskID    TaskID
	StartedAt time.Time
	Duration  time.Duration
	Result    Poll
	Panicked  bool
}

// PoolStats represents a point-in-time snapshot of pool state. Safe to read
// from any goroutine.
type PoolStats struct {
	Name      string
	Pending   int
	Executing int
	Spawned   uint64
	Completed uint64
	Panicked  uint64
	Rejected  uint64
	Wakes     uint64
	Closed    bool
}
