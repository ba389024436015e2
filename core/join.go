package core

// Join returns a future that completes once every child future has
// completed. Children are polled in order with the same waker; a child is
// never polled again after it reports Ready.
//
// Like any future, the joined result is polled only from the owning
// goroutine, so no synchronization is needed around the child set.
func Join(futures ...Future) Future {
	children := make([]Future, len(futures))
	copy(children, futures)

	remaining := 0
	for _, f := range children {
		if f != nil {
			remaining++
		}
	}

	return FutureFunc(func(w Waker) Poll {
		for i, f := range children {
			if f == nil {
				continue
			}
			if f.Poll(w) == PollReady {
				children[i] = nil
				remaining--
			}
		}
		if remaining == 0 {
			return PollReady
		}
		return PollPending
	})
}
