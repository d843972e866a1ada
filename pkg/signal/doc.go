// Package signal implements the typed signal primitives devices use to
// exchange values, and the type-erased handles that let the exchange engine
// move those values without knowing their Go types.
//
// # Kinds and Roles
//
// Values are either State or Event:
//   - State: persistent and equality-comparable. A change is a difference
//     from the previously recorded value.
//   - Event: instantaneous and never compared. Every push is a distinct
//     occurrence.
//
// Combined with direction this yields a closed set of four roles:
//
//	StateSource  -> StateTarget
//	EventSource  -> EventTarget
//
// # Primitives
//
//	StateSource[V]        last value + pending flag, delta semantics
//	StateSourceBank[V]    fixed array of independently tracked StateSources
//	StateTargetLast[V]    latest value only, intermediate values superseded
//	StateTargetQueued[V]  every value, in arrival order
//	EventSource[V]        every occurrence, in push order
//	EventTargetLast[V]    latest occurrence only (lossy)
//	EventTargetQueued[V]  every occurrence, in arrival order
//
// TakePending is the only egress of every primitive and is drain-once:
// a value returned is never returned again.
//
// # Type Erasure
//
// Each primitive is exposed as a Handle carrying a TypeTag. Connection
// resolution compares tags once per edge; afterwards the erased SetAny,
// PushAny and TakePendingAny methods cast values back to their concrete
// type and panic with *InvariantError if the cast fails, since that can only
// happen when resolution was skipped.
package signal
