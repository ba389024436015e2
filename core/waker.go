package core

import "sync/atomic"

// ChannelWakeSignal is the cross-goroutine wake notification bound to a
// pool's owning goroutine. It delivers wakes through a capacity-1 channel:
// Wake performs a non-blocking send, and the buffered slot doubles as a
// persistent work-pending flag, so a wake that arrives while the owner is
// busy stays latched until the owner drains it. Concurrent wakes coalesce
// into that single slot instead of piling up.
//
// The owning goroutine's event loop blocks on Notified(); anything else
// (spawners, suspended tasks, background timers) calls Wake.
type ChannelWakeSignal struct {
	ownerID int64
	ch      chan struct{}
	wakes   atomic.Uint64
}

var _ Waker = (*ChannelWakeSignal)(nil)

// NewChannelWakeSignal creates a wake signal bound to the goroutine
// identified by ownerID. The binding is fixed for the signal's lifetime.
func NewChannelWakeSignal(ownerID int64) *ChannelWakeSignal {
	return &ChannelWakeSignal{
		ownerID: ownerID,
		ch:      make(chan struct{}, 1),
	}
}

// Wake posts a notification to the owning goroutine. It never blocks and
// never fails; if a notification is already latched this one coalesces
// with it.
func (s *ChannelWakeSignal) Wake() {
	s.wakes.Add(1)
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Notified returns the channel the owning goroutine blocks on. A receive
// consumes the latched notification; the loop must follow every receive
// with a drain of its pool.
func (s *ChannelWakeSignal) Notified() <-chan struct{} {
	return s.ch
}

// OwnerID returns the goroutine id this signal was bound to at construction.
func (s *ChannelWakeSignal) OwnerID() int64 {
	return s.ownerID
}

// WakeCount returns the total number of Wake calls, counting coalesced ones.
func (s *ChannelWakeSignal) WakeCount() uint64 {
	return s.wakes.Load()
}
