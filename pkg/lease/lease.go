// Package lease provides a single-owner guard for resources that must never
// be used by two holders at the same time.
//
// Contention on a Lease is a programming error, not a runtime condition to
// wait out: Acquire panics with a *ConflictError naming both holders instead
// of blocking or silently permitting aliasing. TryAcquire is available where
// the caller wants to report the conflict itself.
package lease

import (
	"errors"
	"fmt"
	"sync"
)

// ErrLeased is returned by TryAcquire when the resource is already held.
var ErrLeased = errors.New("resource already leased")

// ConflictError describes a second concurrent acquisition.
type ConflictError struct {
	Resource string
	Holder   string
	Claimant string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("lease %q: held by %q, concurrently requested by %q", e.Resource, e.Holder, e.Claimant)
}

// Unwrap lets errors.Is match ErrLeased.
func (e *ConflictError) Unwrap() error {
	return ErrLeased
}

// Lease guards a value of type T.
type Lease[T any] struct {
	mu     sync.Mutex
	name   string
	value  T
	holder string
	held   bool
}

// New creates a lease named name around value.
func New[T any](name string, value T) *Lease[T] {
	return &Lease[T]{name: name, value: value}
}

// Name returns the resource name.
func (l *Lease[T]) Name() string {
	return l.name
}

// Acquire takes the lease for holder. It panics with *ConflictError if the
// lease is already held.
func (l *Lease[T]) Acquire(holder string) *Guard[T] {
	g, err := l.TryAcquire(holder)
	if err != nil {
		panic(err)
	}
	return g
}

// TryAcquire takes the lease for holder or returns a *ConflictError.
func (l *Lease[T]) TryAcquire(holder string) (*Guard[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return nil, &ConflictError{Resource: l.name, Holder: l.holder, Claimant: holder}
	}
	l.held = true
	l.holder = holder
	return &Guard[T]{lease: l}, nil
}

// Held reports whether the lease is currently taken.
func (l *Lease[T]) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

func (l *Lease[T]) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.holder = ""
}

// Guard is the proof of holding a Lease.
type Guard[T any] struct {
	lease    *Lease[T]
	released bool
}

// Value returns the guarded value. It panics after Release.
func (g *Guard[T]) Value() T {
	if g.released {
		panic(fmt.Sprintf("lease %q: value used after release", g.lease.name))
	}
	return g.lease.value
}

// Release gives the lease back. Calling Release more than once is a no-op.
func (g *Guard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.lease.release()
}
