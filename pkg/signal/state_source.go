package signal

import "sync"

// StateSource holds the last value a device published on a state signal.
type StateSource[V StateValue] struct {
	mu      sync.RWMutex
	value   V
	valid   bool
	pending bool
}

// NewStateSource creates a source with no value yet.
func NewStateSource[V StateValue]() *StateSource[V] {
	return &StateSource[V]{}
}

// NewStateSourceWith creates a source holding initial, pending delivery.
func NewStateSourceWith[V StateValue](initial V) *StateSource[V] {
	return &StateSource[V]{value: initial, valid: true, pending: true}
}

// Set records v and reports whether it differs from the stored value.
// The first Set on an empty source always reports a change.
func (s *StateSource[V]) Set(v V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.valid && s.value == v {
		return false
	}
	s.value = v
	s.valid = true
	s.pending = true
	return true
}

// TakePending returns the value if it changed since the last drain.
func (s *StateSource[V]) TakePending() (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending {
		var zero V
		return zero, false
	}
	s.pending = false
	return s.value, true
}

// PeekLast returns the stored value without consuming it.
func (s *StateSource[V]) PeekLast() (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.valid
}

func (s *StateSource[V]) Role() Role    { return RoleStateSource }
func (s *StateSource[V]) Type() TypeTag { return stateTag[V]() }
func (s *StateSource[V]) sealed()       {}

// TakePendingAny implements StateSourceHandle.
func (s *StateSource[V]) TakePendingAny() (any, bool) {
	v, ok := s.TakePending()
	if !ok {
		return nil, false
	}
	return v, true
}

// PeekLastAny implements StateSourceHandle.
func (s *StateSource[V]) PeekLastAny() (any, bool) {
	v, ok := s.PeekLast()
	if !ok {
		return nil, false
	}
	return v, true
}

// Pending is one channel's drained delta.
type Pending[V StateValue] struct {
	Value   V
	Changed bool
}

// StateSourceBank is a fixed-size array of independently tracked state
// sources, used by multi-channel devices. Each channel is exposed as its own
// handle through Channel.
type StateSourceBank[V StateValue] struct {
	channels []*StateSource[V]
}

// NewStateSourceBank creates a bank of n empty channels.
func NewStateSourceBank[V StateValue](n int) *StateSourceBank[V] {
	b := &StateSourceBank[V]{channels: make([]*StateSource[V], n)}
	for i := range b.channels {
		b.channels[i] = NewStateSource[V]()
	}
	return b
}

// Len returns the channel count.
func (b *StateSourceBank[V]) Len() int {
	return len(b.channels)
}

// Channel returns channel i.
func (b *StateSourceBank[V]) Channel(i int) *StateSource[V] {
	return b.channels[i]
}

// Set stores v on channel i and reports whether it changed.
func (b *StateSourceBank[V]) Set(i int, v V) bool {
	return b.channels[i].Set(v)
}

// SetMany stores one value per channel and reports whether at least one
// channel changed. values must have exactly Len entries.
func (b *StateSourceBank[V]) SetMany(values []V) bool {
	if len(values) != len(b.channels) {
		panic("signal: SetMany length does not match bank size")
	}
	changed := false
	for i, v := range values {
		if b.channels[i].Set(v) {
			changed = true
		}
	}
	return changed
}

// TakePending drains every channel.
func (b *StateSourceBank[V]) TakePending() []Pending[V] {
	out := make([]Pending[V], len(b.channels))
	for i, ch := range b.channels {
		out[i].Value, out[i].Changed = ch.TakePending()
	}
	return out
}

// PeekLast returns every channel's stored value; unset channels are zero.
func (b *StateSourceBank[V]) PeekLast() []V {
	out := make([]V, len(b.channels))
	for i, ch := range b.channels {
		out[i], _ = ch.PeekLast()
	}
	return out
}
