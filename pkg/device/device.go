package device

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mash-protocol/mash-logic/pkg/signal"
	"github.com/mash-protocol/mash-logic/pkg/wake"
)

// Device set errors.
var (
	ErrEmptyName      = errors.New("device name is empty")
	ErrInvalidName    = errors.New("device name contains '/' or whitespace")
	ErrDuplicateName  = errors.New("duplicate device name")
	ErrDeviceNotFound = errors.New("device not found")
)

// Exited is the completion token returned by Run.
type Exited struct{}

// Device is implemented by every participant in the signal exchange.
type Device interface {
	// Class returns the device class name, e.g. "logic/inverter".
	Class() string

	// Signals returns the device's exposed signals. The map and its handles
	// must not change after the device is constructed.
	Signals() signal.Map

	// SourcesChanged returns the wake the device fires when a source changed.
	SourcesChanged() *wake.Signal

	// TargetsChanged is called synchronously by the exchange engine after
	// at least one target received a value.
	TargetsChanged()

	// Run performs device-specific work until ctx is cancelled.
	Run(ctx context.Context) Exited
}

// SignalNamer is implemented by devices that give their signals names.
// Names are accepted wherever a signal ID is, e.g. "inv1/out".
type SignalNamer interface {
	SignalNames() map[signal.ID]string
}

// Retainer is implemented by devices whose state survives restarts. Restore
// is called before the first settle; Retained after the last one.
type Retainer interface {
	Retained() map[string]any
	Restore(values map[string]any) error
}

// Base provides the SourcesChanged wake for device implementations.
type Base struct {
	sources wake.Signal
}

// SourcesChanged implements Device.
func (b *Base) SourcesChanged() *wake.Signal {
	return &b.sources
}

// NotifySources arms the wake if changed is true. It is meant to be fed the
// result of a source's Set.
func (b *Base) NotifySources(changed bool) {
	if changed {
		b.sources.Wake()
	}
}

// Idle blocks until ctx is done. Devices without a task of their own use it
// as their Run body.
func Idle(ctx context.Context) Exited {
	<-ctx.Done()
	return Exited{}
}

// ID identifies a device within the running set. IDs are dense and follow
// declaration order.
type ID uint32

// Entry is one device in a Set.
type Entry struct {
	ID     ID
	Name   string
	Device Device
}

// String returns "name (class)".
func (e Entry) String() string {
	return fmt.Sprintf("%s (%s)", e.Name, e.Device.Class())
}

// Set is the ordered collection of devices of one run.
type Set struct {
	entries []Entry
	byName  map[string]ID
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{byName: make(map[string]ID)}
}

// Add appends a device and returns its ID.
func (s *Set) Add(name string, dev Device) (ID, error) {
	if name == "" {
		return 0, ErrEmptyName
	}
	if strings.ContainsAny(name, "/ \t\n") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, exists := s.byName[name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	id := ID(len(s.entries))
	s.entries = append(s.entries, Entry{ID: id, Name: name, Device: dev})
	s.byName[name] = id
	return id, nil
}

// Get returns the entry with the given ID.
func (s *Set) Get(id ID) (Entry, bool) {
	if int(id) >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[id], true
}

// Lookup returns the entry with the given name.
func (s *Set) Lookup(name string) (Entry, error) {
	id, ok := s.byName[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	return s.entries[id], nil
}

// Name returns the name of device id, or a placeholder for unknown IDs.
func (s *Set) Name(id ID) string {
	if e, ok := s.Get(id); ok {
		return e.Name
	}
	return fmt.Sprintf("#%d", id)
}

// Entries returns all entries in declaration order.
func (s *Set) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of devices.
func (s *Set) Len() int {
	return len(s.entries)
}
