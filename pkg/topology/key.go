package topology

import (
	"cmp"
	"fmt"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// Ref names a signal by device name, as configuration does.
type Ref struct {
	Device string
	Signal signal.ID

	// Name is set only on a ref whose signal name could not be resolved to
	// an ID. No endpoint has such a ref, so resolution reports it missing.
	Name string
}

// Unresolved returns a ref for a signal name that names no known signal.
func Unresolved(device, name string) Ref {
	return Ref{Device: device, Name: name}
}

// String renders the ref as "device/signal".
func (r Ref) String() string {
	if r.Name != "" {
		return r.Device + "/" + r.Name
	}
	return fmt.Sprintf("%s/%d", r.Device, r.Signal)
}

// Compare orders refs by device name, then signal ID, then name.
func (r Ref) Compare(o Ref) int {
	if c := cmp.Compare(r.Device, o.Device); c != 0 {
		return c
	}
	if c := cmp.Compare(r.Signal, o.Signal); c != 0 {
		return c
	}
	return cmp.Compare(r.Name, o.Name)
}

// Key identifies a live signal by device ID.
type Key struct {
	Device device.ID
	Signal signal.ID
}

// String renders the key as "#device/signal".
func (k Key) String() string {
	return fmt.Sprintf("#%d/%d", k.Device, k.Signal)
}

// Compare orders keys by device ID, then signal ID.
func (k Key) Compare(o Key) int {
	if c := cmp.Compare(k.Device, o.Device); c != 0 {
		return c
	}
	return cmp.Compare(k.Signal, o.Signal)
}

// Endpoint is a live signal handle with both of its identities.
type Endpoint struct {
	Key    Key
	Ref    Ref
	Handle signal.Handle
}

// Endpoints is the lookup from Ref to live handle, collected from every
// device's signal map.
type Endpoints struct {
	byRef map[Ref]Endpoint
}

// CollectEndpoints asks every device in set for its signal map.
func CollectEndpoints(set *device.Set) *Endpoints {
	e := &Endpoints{byRef: make(map[Ref]Endpoint)}
	for _, entry := range set.Entries() {
		signals := entry.Device.Signals()
		for _, id := range signals.IDs() {
			ref := Ref{Device: entry.Name, Signal: id}
			e.byRef[ref] = Endpoint{
				Key:    Key{Device: entry.ID, Signal: id},
				Ref:    ref,
				Handle: signals[id],
			}
		}
	}
	return e
}

// Lookup returns the endpoint for ref.
func (e *Endpoints) Lookup(ref Ref) (Endpoint, bool) {
	ep, ok := e.byRef[ref]
	return ep, ok
}

// Len returns the number of endpoints.
func (e *Endpoints) Len() int {
	return len(e.byRef)
}
