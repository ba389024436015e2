package core

import "fmt"

// =============================================================================
// Spawn and Reply Pattern
// =============================================================================

// WorkFunc produces a result of type T on a background goroutine.
type WorkFunc[T any] func() (T, error)

// ReplyFunc consumes the work's result on the pool's owning goroutine.
type ReplyFunc[T any] func(result T, err error)

// SpawnAndReply runs work on a fresh background goroutine and delivers its
// result to reply on the pool's owning goroutine. Use it to keep blocking
// IO off the owning goroutine while still touching owner-confined state in
// the reply.
//
// Execution guarantee (Happens-Before):
// - work ALWAYS finishes before reply starts
// - reply ALWAYS sees the final values written by work (the oneshot's
//   mutex publishes them)
//
// A panic in work does not kill the process: it is recovered on the
// background goroutine and delivered to reply as an error, since there is
// no poll boundary out there to recover it at.
func SpawnAndReply[T any](sp Spawner, work WorkFunc[T], reply ReplyFunc[T]) error {
	if work == nil || reply == nil {
		return ErrNilFuture
	}

	type outcome struct {
		value T
		err   error
	}
	o := NewOneshot[outcome]()

	// Spawn the reply side first so a disconnected pool surfaces before the
	// background goroutine starts.
	err := sp.SpawnFunc(func(w Waker) Poll {
		if o.Poll(w) == PollPending {
			return PollPending
		}
		res, _ := o.Value()
		reply(res.value, res.err)
		return PollReady
	})
	if err != nil {
		return err
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				o.Complete(outcome{value: zero, err: fmt.Errorf("background work panicked: %v", r)})
			}
		}()
		v, workErr := work()
		o.Complete(outcome{value: v, err: workErr})
	}()
	return nil
}
