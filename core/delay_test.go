package core

import (
	"testing"
	"time"
)

// drainUntil drains the pool whenever its wake signal fires, until cond
// holds or the timeout elapses. Mimics a minimal embedding loop.
func drainUntil(t *testing.T, pool *Pool, timeout time.Duration, cond func() bool) {
	t.Helper()
	cws := pool.Wake().(*ChannelWakeSignal)
	deadline := time.After(timeout)
	for {
		pool.RunUntilStalled()
		if cond() {
			return
		}
		select {
		case <-cws.Notified():
		case <-deadline:
			t.Fatal("condition not met within timeout")
		}
	}
}

// TestSleep_Completes tests the one-goroutine-per-delay path
// Main test items:
// 1. A Sleep future stays Pending before the delay elapses
// 2. The elapsed timer wakes the pool and the future completes
func TestSleep_Completes(t *testing.T) {
	pool := New()
	defer pool.Close()

	done := false
	start := time.Now()
	sleep := Sleep(20 * time.Millisecond)
	if err := pool.Spawner().SpawnFunc(func(w Waker) Poll {
		if sleep.Poll(w) == PollPending {
			return PollPending
		}
		done = true
		return PollReady
	}); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	pool.RunUntilStalled()
	if done {
		t.Fatal("Sleep completed before the delay elapsed")
	}

	drainUntil(t, pool, 2*time.Second, func() bool { return done })

	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Sleep completed after %v, want >= 20ms", elapsed)
	}
}

// TestDelayScheduler_After tests the shared timer goroutine
// Main test items:
// 1. After futures complete once their deadline passes
// 2. Deadlines expire in order regardless of insertion order
// 3. The fire time is delivered as the oneshot value
func TestDelayScheduler_After(t *testing.T) {
	ds := NewDelayScheduler()
	defer ds.Stop()

	pool := New()
	defer pool.Close()
	spawner := pool.Spawner()

	var order []int
	// Insert out of deadline order.
	delays := []struct {
		id int
		d  time.Duration
	}{
		{id: 2, d: 40 * time.Millisecond},
		{id: 1, d: 15 * time.Millisecond},
		{id: 3, d: 60 * time.Millisecond},
	}
	for _, tc := range delays {
		id := tc.id
		wait := ds.After(tc.d)
		if err := spawner.SpawnFunc(func(w Waker) Poll {
			if wait.Poll(w) == PollPending {
				return PollPending
			}
			order = append(order, id)
			return PollReady
		}); err != nil {
			t.Fatalf("Spawn failed: %v", err)
		}
	}

	drainUntil(t, pool, 5*time.Second, func() bool { return len(order) == 3 })

	for i, want := range []int{1, 2, 3} {
		if order[i] != want {
			t.Errorf("Completion order[%d] = %d, want %d", i, order[i], want)
		}
	}
	if ds.Len() != 0 {
		t.Errorf("Scheduler still holds %d deadlines", ds.Len())
	}
}

// TestDelayScheduler_EarlierDeadlinePreempts tests timer rescheduling
// Main test items:
// 1. A deadline earlier than the current earliest fires on time
// 2. The timer goroutine re-arms instead of sleeping through it
func TestDelayScheduler_EarlierDeadlinePreempts(t *testing.T) {
	ds := NewDelayScheduler()
	defer ds.Stop()

	pool := New()
	defer pool.Close()
	spawner := pool.Spawner()

	// Long deadline first, then a much shorter one.
	long := ds.After(5 * time.Second)
	_ = long
	short := ds.After(20 * time.Millisecond)

	fired := false
	start := time.Now()
	if err := spawner.SpawnFunc(func(w Waker) Poll {
		if short.Poll(w) == PollPending {
			return PollPending
		}
		fired = true
		return PollReady
	}); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	drainUntil(t, pool, 2*time.Second, func() bool { return fired })

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Short deadline fired after %v; timer did not re-arm", elapsed)
	}
}

// TestDelayScheduler_Stop tests shutdown semantics
// Main test items:
// 1. Stop discards unexpired deadlines
// 2. Their futures stay Pending forever
func TestDelayScheduler_Stop(t *testing.T) {
	ds := NewDelayScheduler()

	wait := ds.After(10 * time.Second)
	ds.Stop()

	if ds.Len() != 0 {
		t.Errorf("Len after Stop = %d, want 0", ds.Len())
	}
	if wait.Poll(WakerFunc(func() {})) != PollPending {
		t.Error("Dropped deadline completed after Stop")
	}
}

// TestDelayScheduler_CompletionValue tests the delivered fire time
func TestDelayScheduler_CompletionValue(t *testing.T) {
	ds := NewDelayScheduler()
	defer ds.Stop()

	before := time.Now()
	wait := ds.After(10 * time.Millisecond).(*Oneshot[time.Time])

	deadline := time.Now().Add(2 * time.Second)
	for !wait.IsCompleted() {
		if time.Now().After(deadline) {
			t.Fatal("Deadline never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}

	at, ok := wait.Value()
	if !ok {
		t.Fatal("Completed deadline has no value")
	}
	if at.Before(before) {
		t.Errorf("Fire time %v precedes scheduling time %v", at, before)
	}
}
