package signal

import (
	"fmt"
	"reflect"
	"slices"
)

// ID names one signal slot within a device.
type ID uint16

// StateValue is the constraint for values carried by state signals.
type StateValue interface {
	comparable
}

// EventValue is the constraint for values carried by event signals.
type EventValue interface {
	any
}

// Kind distinguishes state from event values.
type Kind uint8

const (
	// KindState marks persistent, comparable values.
	KindState Kind = iota + 1

	// KindEvent marks instantaneous values.
	KindEvent
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindState:
		return "STATE"
	case KindEvent:
		return "EVENT"
	default:
		return "UNKNOWN"
	}
}

// Role is one of the four endpoint roles.
type Role uint8

const (
	RoleStateSource Role = iota + 1
	RoleStateTarget
	RoleEventSource
	RoleEventTarget
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleStateSource:
		return "STATE_SOURCE"
	case RoleStateTarget:
		return "STATE_TARGET"
	case RoleEventSource:
		return "EVENT_SOURCE"
	case RoleEventTarget:
		return "EVENT_TARGET"
	default:
		return "UNKNOWN"
	}
}

// Kind returns the value kind the role carries.
func (r Role) Kind() Kind {
	switch r {
	case RoleStateSource, RoleStateTarget:
		return KindState
	case RoleEventSource, RoleEventTarget:
		return KindEvent
	default:
		return 0
	}
}

// IsSource reports whether the role produces values.
func (r Role) IsSource() bool {
	return r == RoleStateSource || r == RoleEventSource
}

// Accepts reports whether a source of role r may feed a target of role t.
func (r Role) Accepts(t Role) bool {
	return (r == RoleStateSource && t == RoleStateTarget) ||
		(r == RoleEventSource && t == RoleEventTarget)
}

// TypeTag identifies the kind and Go type of the values a handle carries.
// Two tags are equal iff both kind and type match.
type TypeTag struct {
	kind Kind
	typ  reflect.Type
}

func stateTag[V StateValue]() TypeTag {
	return TypeTag{kind: KindState, typ: reflect.TypeFor[V]()}
}

func eventTag[V EventValue]() TypeTag {
	return TypeTag{kind: KindEvent, typ: reflect.TypeFor[V]()}
}

// Kind returns the value kind.
func (t TypeTag) Kind() Kind {
	return t.kind
}

// Name returns the human-readable Go type name.
func (t TypeTag) Name() string {
	if t.typ == nil {
		return "<nil>"
	}
	return t.typ.String()
}

// String renders the tag as kind<type>.
func (t TypeTag) String() string {
	return fmt.Sprintf("%s<%s>", t.kind, t.Name())
}

// Handle is the type-erased view of a signal primitive. The set of
// implementations is closed; callers switch on Role or on the capability
// interfaces below.
type Handle interface {
	Role() Role
	Type() TypeTag
	sealed()
}

// StateSourceHandle is the erased capability of a state source.
type StateSourceHandle interface {
	Handle

	// TakePendingAny returns the value changed since the last drain.
	TakePendingAny() (any, bool)

	// PeekLastAny returns the last value without consuming it.
	PeekLastAny() (any, bool)
}

// StateTargetHandle is the erased capability of a state target.
type StateTargetHandle interface {
	Handle

	// SetAny stores a value that must have the target's type.
	SetAny(value any) bool
}

// EventSourceHandle is the erased capability of an event source.
type EventSourceHandle interface {
	Handle

	// TakePendingAny drains the queue. The batch is a []V boxed once;
	// n is its length.
	TakePendingAny() (batch any, n int)
}

// EventTargetHandle is the erased capability of an event target.
type EventTargetHandle interface {
	Handle

	// PushAny delivers a batch that must be a []V of the target's type.
	PushAny(batch any) bool
}

// Map is a device's exposed signal set.
type Map map[ID]Handle

// IDs returns the signal IDs in ascending order.
func (m Map) IDs() []ID {
	ids := make([]ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// InvariantError reports a failed cast on an edge that resolution accepted.
// It is raised with panic: reaching it means the topology was never
// validated.
type InvariantError struct {
	Op       string
	Expected TypeTag
	Actual   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("signal invariant violated: %s expected %s, got %s", e.Op, e.Expected, e.Actual)
}

func cast[T any](value any, tag TypeTag, op string) T {
	v, ok := value.(T)
	if !ok {
		panic(&InvariantError{Op: op, Expected: tag, Actual: fmt.Sprintf("%T", value)})
	}
	return v
}
