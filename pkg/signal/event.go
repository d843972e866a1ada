package signal

import "sync"

// EventSource queues every occurrence a device emits. It never compares
// and never coalesces.
type EventSource[V EventValue] struct {
	q *queue[V]
}

// NewEventSource creates an empty source.
func NewEventSource[V EventValue]() *EventSource[V] {
	return &EventSource[V]{q: newQueue[V]()}
}

// Push appends one occurrence.
func (s *EventSource[V]) Push(v V) {
	s.q.push(v)
}

// PushMany appends values in order and reports whether anything was added.
func (s *EventSource[V]) PushMany(values ...V) bool {
	for _, v := range values {
		s.q.push(v)
	}
	return len(values) > 0
}

// TakePending drains every occurrence in push order.
func (s *EventSource[V]) TakePending() []V {
	return s.q.drain()
}

func (s *EventSource[V]) Role() Role    { return RoleEventSource }
func (s *EventSource[V]) Type() TypeTag { return eventTag[V]() }
func (s *EventSource[V]) sealed()       {}

// TakePendingAny implements EventSourceHandle.
func (s *EventSource[V]) TakePendingAny() (any, int) {
	batch := s.q.drain()
	if len(batch) == 0 {
		return nil, 0
	}
	return batch, len(batch)
}

// EventTargetLast keeps only the most recent undelivered occurrence.
type EventTargetLast[V EventValue] struct {
	mu      sync.Mutex
	value   V
	pending bool
}

// NewEventTargetLast creates an empty target.
func NewEventTargetLast[V EventValue]() *EventTargetLast[V] {
	return &EventTargetLast[V]{}
}

// PushMany keeps the last value of the batch, discarding earlier undrained
// occurrences. An empty batch is a no-op and returns false.
func (t *EventTargetLast[V]) PushMany(values []V) bool {
	if len(values) == 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = values[len(values)-1]
	t.pending = true
	return true
}

// TakePending returns the latest occurrence since the last drain.
func (t *EventTargetLast[V]) TakePending() (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero V
	if !t.pending {
		return zero, false
	}
	v := t.value
	t.value = zero
	t.pending = false
	return v, true
}

func (t *EventTargetLast[V]) Role() Role    { return RoleEventTarget }
func (t *EventTargetLast[V]) Type() TypeTag { return eventTag[V]() }
func (t *EventTargetLast[V]) sealed()       {}

// PushAny implements EventTargetHandle.
func (t *EventTargetLast[V]) PushAny(batch any) bool {
	return t.PushMany(cast[[]V](batch, t.Type(), "EventTargetLast.PushAny"))
}

// EventTargetQueued keeps every occurrence in arrival order.
type EventTargetQueued[V EventValue] struct {
	q *queue[V]
}

// NewEventTargetQueued creates an empty target.
func NewEventTargetQueued[V EventValue]() *EventTargetQueued[V] {
	return &EventTargetQueued[V]{q: newQueue[V]()}
}

// PushMany appends the batch and reports whether it was non-empty.
func (t *EventTargetQueued[V]) PushMany(values []V) bool {
	for _, v := range values {
		t.q.push(v)
	}
	return len(values) > 0
}

// TakePending drains every occurrence in arrival order.
func (t *EventTargetQueued[V]) TakePending() []V {
	return t.q.drain()
}

func (t *EventTargetQueued[V]) Role() Role    { return RoleEventTarget }
func (t *EventTargetQueued[V]) Type() TypeTag { return eventTag[V]() }
func (t *EventTargetQueued[V]) sealed()       {}

// PushAny implements EventTargetHandle.
func (t *EventTargetQueued[V]) PushAny(batch any) bool {
	return t.PushMany(cast[[]V](batch, t.Type(), "EventTargetQueued.PushAny"))
}

// Compile-time interface satisfaction checks.
var (
	_ StateSourceHandle = (*StateSource[bool])(nil)
	_ StateTargetHandle = (*StateTargetLast[bool])(nil)
	_ StateTargetHandle = (*StateTargetQueued[bool])(nil)
	_ EventSourceHandle = (*EventSource[bool])(nil)
	_ EventTargetHandle = (*EventTargetLast[bool])(nil)
	_ EventTargetHandle = (*EventTargetQueued[bool])(nil)
)
