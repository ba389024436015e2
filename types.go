package wakepool

import (
	"time"

	"github.com/Swind/go-wakepool/core"
)

// Re-export commonly used types from the core package for convenience.
// This allows users to import only the wakepool package for most use cases.

// Poll is the result of one attempt to advance a Future
type Poll = core.Poll

// Poll results
const (
	PollPending = core.PollPending
	PollReady   = core.PollReady
)

// Waker is the notify capability handed to every poll
type Waker = core.Waker

// WakerFunc adapts a plain function to the Waker interface
type WakerFunc = core.WakerFunc

// Future is an incrementally advanceable unit of work
type Future = core.Future

// FutureFunc adapts a plain function to the Future interface
type FutureFunc = core.FutureFunc

// TaskID identifies a spawned future within its pool
type TaskID = core.TaskID

// Pool is the single-consumer cooperative task pool
type Pool = core.Pool

// PoolConfig configures a Pool
type PoolConfig = core.PoolConfig

// PoolStats is a point-in-time snapshot of pool state
type PoolStats = core.PoolStats

// Spawner is the goroutine-safe submission handle
type Spawner = core.Spawner

// ChannelWakeSignal is the channel-backed cross-goroutine wake notification
type ChannelWakeSignal = core.ChannelWakeSignal

// DelayScheduler multiplexes delay futures onto one timer goroutine
type DelayScheduler = core.DelayScheduler

// RepeatingHandle controls the lifecycle of a repeating task
type RepeatingHandle = core.RepeatingHandle

// Oneshot is a single-use completion channel in Future form
type Oneshot[T any] = core.Oneshot[T]

// WorkFunc and ReplyFunc for the generic SpawnAndReply pattern
type WorkFunc[T any] = core.WorkFunc[T]
type ReplyFunc[T any] = core.ReplyFunc[T]

// Error sentinels
var (
	ErrDisconnected = core.ErrDisconnected
	ErrPoisoned     = core.ErrPoisoned
	ErrNilFuture    = core.ErrNilFuture
)

// NewPool creates a pool owned by the calling goroutine.
// Use NewLoop instead when you also want the blocking wait/dispatch loop.
func NewPool() *core.Pool {
	return core.New()
}

// NewPoolWithConfig creates a pool owned by the calling goroutine with the
// given configuration.
func NewPoolWithConfig(cfg *core.PoolConfig) *core.Pool {
	return core.NewWithConfig(cfg)
}

// DefaultPoolConfig returns a config with default handlers.
var DefaultPoolConfig = core.DefaultPoolConfig

// Sleep returns a future that completes after d.
func Sleep(d time.Duration) core.Future {
	return core.Sleep(d)
}

// NewDelayScheduler creates a delay scheduler backed by one timer goroutine.
var NewDelayScheduler = core.NewDelayScheduler

// Join returns a future that completes once every child has completed.
var Join = core.Join

// NewOneshot creates an incomplete Oneshot.
func NewOneshot[T any]() *core.Oneshot[T] {
	return core.NewOneshot[T]()
}

// SpawnRepeating schedules fn to run on the pool's owning goroutine every interval.
var SpawnRepeating = core.SpawnRepeating

// SpawnAndReply runs work on a background goroutine and delivers its result
// to reply on the pool's owning goroutine.
func SpawnAndReply[T any](sp core.Spawner, work core.WorkFunc[T], reply core.ReplyFunc[T]) error {
	return core.SpawnAndReply(sp, work, reply)
}
