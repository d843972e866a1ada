package log

import (
	"time"
)

// Event represents one exchange trace event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RunID uniquely identifies the runtime instance (UUID).
	RunID string `cbor:"2,keyasint"`

	// Settle is the settle sequence number within the run, starting at 1.
	Settle uint64 `cbor:"3,keyasint"`

	// Round is the round within the settle, starting at 1 (0 for settle
	// summaries).
	Round int `cbor:"4,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Device is the name of the device the event concerns, if any.
	Device string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	SettleInfo *SettleEvent    `cbor:"10,keyasint,omitempty"`
	Push       *PushEvent      `cbor:"11,keyasint,omitempty"`
	Invoke     *InvokeEvent    `cbor:"12,keyasint,omitempty"`
	Error      *ErrorEventData `cbor:"13,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategorySettle indicates a completed settle.
	CategorySettle Category = 0
	// CategoryPush indicates values pushed along a connection.
	CategoryPush Category = 1
	// CategoryInvoke indicates a TargetsChanged call.
	CategoryInvoke Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySettle:
		return "SETTLE"
	case CategoryPush:
		return "PUSH"
	case CategoryInvoke:
		return "INVOKE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name as produced by String.
func ParseCategory(s string) (Category, bool) {
	for _, c := range []Category{CategorySettle, CategoryPush, CategoryInvoke, CategoryError} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// SignalKind is the value kind carried by a connection.
type SignalKind uint8

const (
	// SignalKindState indicates a state connection.
	SignalKindState SignalKind = 0
	// SignalKindEvent indicates an event connection.
	SignalKindEvent SignalKind = 1
)

// String returns the kind name.
func (k SignalKind) String() string {
	switch k {
	case SignalKindState:
		return "STATE"
	case SignalKindEvent:
		return "EVENT"
	default:
		return "UNKNOWN"
	}
}

// SettleEvent summarizes one settle.
type SettleEvent struct {
	// Rounds is the number of rounds it took to reach quiescence.
	Rounds int `cbor:"1,keyasint"`

	// Pushes is the number of target pushes performed.
	Pushes int `cbor:"2,keyasint"`

	// Invocations is the number of TargetsChanged calls.
	Invocations int `cbor:"3,keyasint"`

	// Duration of the settle. Stored as nanoseconds.
	Duration time.Duration `cbor:"4,keyasint"`

	// Initial marks the startup settle, where every device counts as armed.
	Initial bool `cbor:"5,keyasint,omitempty"`
}

// PushEvent captures values delivered along one connection.
type PushEvent struct {
	// Kind of the connection.
	Kind SignalKind `cbor:"1,keyasint"`

	// Source is the source endpoint as "device/signal".
	Source string `cbor:"2,keyasint"`

	// Target is the target endpoint as "device/signal".
	Target string `cbor:"3,keyasint"`

	// Count is the number of values delivered (events in the batch, 1 for
	// state).
	Count int `cbor:"4,keyasint"`

	// Changed reports whether the target reported a change.
	Changed bool `cbor:"5,keyasint,omitempty"`

	// Value is the state value pushed (state connections only).
	Value any `cbor:"6,keyasint,omitempty"`
}

// InvokeEvent captures a TargetsChanged call.
type InvokeEvent struct {
	// Class is the device class.
	Class string `cbor:"1,keyasint"`

	// Targets is the number of the device's targets that changed.
	Targets int `cbor:"2,keyasint"`
}

// ErrorEventData captures a fatal exchange error.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`

	// Armed lists the devices still armed when the error occurred.
	Armed []string `cbor:"3,keyasint,omitempty"`
}
