package core

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// The scheduler core has no timer facility. Delays are layered on top of it
// using the same shapes any external event uses: a Oneshot completed from a
// background goroutine. Sleep spawns one goroutine per delay; DelayScheduler
// multiplexes many delays onto a single timer goroutine.

// Sleep returns a future that completes after d. The timer runs on a
// detached goroutine started by the first poll, so an unpolled Sleep costs
// nothing.
func Sleep(d time.Duration) Future {
	o := NewOneshot[struct{}]()
	var once sync.Once
	return FutureFunc(func(w Waker) Poll {
		once.Do(func() {
			go func() {
				time.Sleep(d)
				o.Complete(struct{}{})
			}()
		})
		return o.Poll(w)
	})
}

// =============================================================================
// DelayScheduler: one timer goroutine for many delay futures
// =============================================================================

// delayEntry is a pending deadline in the scheduler heap.
type delayEntry struct {
	at    time.Time
	done  *Oneshot[time.Time]
	index int // for heap interface
}

// delayHeap implements heap.Interface ordered by deadline.
type delayHeap []*delayEntry

func (h delayHeap) Len() int           { return len(h) }
func (h delayHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h delayHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *delayHeap) Push(x any) {
	n := len(*h)
	item := x.(*delayEntry)
	item.index = n
	*h = append(*h, item)
}

func (h *delayHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *delayHeap) Peek() *delayEntry {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// DelayScheduler produces delay futures backed by a shared timer goroutine,
// avoiding one goroutine per Sleep when an application schedules delays at
// a high rate. From the pool's perspective an After future is an ordinary
// suspending task; the scheduler core never sees a timer.
type DelayScheduler struct {
	mu     sync.Mutex
	pq     delayHeap
	wakeup chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDelayScheduler creates a delay scheduler and starts its timer goroutine.
func NewDelayScheduler() *DelayScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	ds := &DelayScheduler{
		pq:     make(delayHeap, 0),
		wakeup: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
	heap.Init(&ds.pq)
	go ds.loop()
	return ds
}

// After returns a future that completes with the fire time once d elapses.
// Safe from any goroutine.
func (ds *DelayScheduler) After(d time.Duration) Future {
	o := NewOneshot[time.Time]()

	ds.mu.Lock()
	item := &delayEntry{at: time.Now().Add(d), done: o}
	heap.Push(&ds.pq, item)
	first := item.index == 0
	ds.mu.Unlock()

	if first {
		select {
		case ds.wakeup <- struct{}{}:
		default:
		}
	}
	return o
}

func (ds *DelayScheduler) loop() {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		next, ok := ds.nextDelay()
		if ok && next <= 0 {
			ds.fireExpired()
			continue
		}
		if ok {
			timer.Reset(next)
		}

		select {
		case <-ds.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			ds.fireExpired()
		case <-ds.wakeup:
			// New earliest deadline; recalculate on the next turn.
			if ok && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
	}
}

// nextDelay returns the time until the earliest deadline, and whether any
// deadline exists at all.
func (ds *DelayScheduler) nextDelay() (time.Duration, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	item := ds.pq.Peek()
	if item == nil {
		return 0, false
	}
	return time.Until(item.at), true
}

// fireExpired completes every deadline at or before now. Completions run
// outside the lock; each one may fire a waker that re-enters a pool's
// shared queue.
func (ds *DelayScheduler) fireExpired() {
	now := time.Now()

	ds.mu.Lock()
	var expired []*delayEntry
	for ds.pq.Len() > 0 {
		item := ds.pq.Peek()
		if item.at.After(now) {
			break
		}
		heap.Pop(&ds.pq)
		expired = append(expired, item)
	}
	ds.mu.Unlock()

	for _, item := range expired {
		item.done.Complete(now)
	}
}

// Stop terminates the timer goroutine and discards all unexpired deadlines.
// Their futures stay Pending forever, mirroring pool shutdown semantics:
// dropped work is never completed, only released.
func (ds *DelayScheduler) Stop() {
	ds.cancel()

	ds.mu.Lock()
	ds.pq = make(delayHeap, 0)
	heap.Init(&ds.pq)
	ds.mu.Unlock()
}

// Len returns the number of unexpired deadlines.
func (ds *DelayScheduler) Len() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return len(ds.pq)
}
