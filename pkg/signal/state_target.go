package signal

import "sync"

// StateTargetLast keeps only the most recently delivered value.
type StateTargetLast[V StateValue] struct {
	mu      sync.RWMutex
	value   V
	pending bool
}

// NewStateTargetLast creates an empty target.
func NewStateTargetLast[V StateValue]() *StateTargetLast[V] {
	return &StateTargetLast[V]{}
}

// Set stores v, superseding any undrained value.
func (t *StateTargetLast[V]) Set(v V) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = v
	t.pending = true
	return true
}

// TakePending returns the latest value delivered since the last drain.
func (t *StateTargetLast[V]) TakePending() (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.pending {
		var zero V
		return zero, false
	}
	t.pending = false
	return t.value, true
}

func (t *StateTargetLast[V]) Role() Role    { return RoleStateTarget }
func (t *StateTargetLast[V]) Type() TypeTag { return stateTag[V]() }
func (t *StateTargetLast[V]) sealed()       {}

// SetAny implements StateTargetHandle.
func (t *StateTargetLast[V]) SetAny(value any) bool {
	return t.Set(cast[V](value, t.Type(), "StateTargetLast.SetAny"))
}

// StateTargetQueued keeps every delivered value in arrival order.
type StateTargetQueued[V StateValue] struct {
	q *queue[V]
}

// NewStateTargetQueued creates an empty target.
func NewStateTargetQueued[V StateValue]() *StateTargetQueued[V] {
	return &StateTargetQueued[V]{q: newQueue[V]()}
}

// Set appends v.
func (t *StateTargetQueued[V]) Set(v V) bool {
	t.q.push(v)
	return true
}

// TakePending drains every value delivered since the last drain.
func (t *StateTargetQueued[V]) TakePending() []V {
	return t.q.drain()
}

func (t *StateTargetQueued[V]) Role() Role    { return RoleStateTarget }
func (t *StateTargetQueued[V]) Type() TypeTag { return stateTag[V]() }
func (t *StateTargetQueued[V]) sealed()       {}

// SetAny implements StateTargetHandle.
func (t *StateTargetQueued[V]) SetAny(value any) bool {
	return t.Set(cast[V](value, t.Type(), "StateTargetQueued.SetAny"))
}
