package wake

import (
	"context"
	"sync/atomic"
)

// Notifier is a coalescing wake-up channel with a single slot.
// Notify never blocks; repeated calls before the slot is drained are merged.
type Notifier struct {
	ch chan struct{}
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify fills the slot if it is empty.
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// C returns the channel that becomes readable after Notify.
func (n *Notifier) C() <-chan struct{} {
	return n.ch
}

// Pending reports and consumes a pending notification without blocking.
func (n *Notifier) Pending() bool {
	select {
	case <-n.ch:
		return true
	default:
		return false
	}
}

// Signal is an edge-triggered flag with a registered Notifier.
// The zero value is ready to use; Wake on an unregistered Signal only arms it.
type Signal struct {
	armed    atomic.Bool
	notifier atomic.Pointer[Notifier]
}

// Wake arms the signal. Only the transition from disarmed to armed notifies
// the registered Notifier; further wakes before the next Poll are absorbed.
func (s *Signal) Wake() {
	if s.armed.Swap(true) {
		return
	}
	if n := s.notifier.Load(); n != nil {
		n.Notify()
	}
}

// Poll clears the flag and reports whether it was armed.
// Callers must Poll before reading the state the wake announced.
func (s *Signal) Poll() bool {
	return s.armed.Swap(false)
}

// Armed reports the flag without clearing it.
func (s *Signal) Armed() bool {
	return s.armed.Load()
}

// Register installs n as the Notifier of this signal, replacing any previous
// one. If the signal is already armed, n is notified immediately so a wake
// that happened before registration is not lost.
func (s *Signal) Register(n *Notifier) {
	s.notifier.Store(n)
	if s.armed.Load() {
		n.Notify()
	}
}

// Wait blocks until the signal fires or ctx is done. It registers its own
// Notifier, so it must not be combined with another receiver on the same
// Signal.
func (s *Signal) Wait(ctx context.Context) error {
	n := s.notifier.Load()
	if n == nil {
		// Concurrent first waiters agree on one Notifier.
		if fresh := NewNotifier(); s.notifier.CompareAndSwap(nil, fresh) {
			n = fresh
		} else {
			n = s.notifier.Load()
		}
	}
	for {
		if s.Poll() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-n.C():
		}
	}
}
