package inspect

import (
	"strconv"
	"strings"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// ResolveSignalName resolves a signal name to its ID (case-insensitive).
// Devices that do not implement device.SignalNamer have no names.
func ResolveSignalName(dev device.Device, name string) (signal.ID, bool) {
	namer, ok := dev.(device.SignalNamer)
	if !ok {
		return 0, false
	}
	lname := strings.ToLower(name)
	for id, n := range namer.SignalNames() {
		if strings.ToLower(n) == lname {
			return id, true
		}
	}
	return 0, false
}

// SignalName returns the name of a signal, or its decimal ID if the device
// does not name it.
func SignalName(dev device.Device, id signal.ID) string {
	if namer, ok := dev.(device.SignalNamer); ok {
		if n, ok := namer.SignalNames()[id]; ok {
			return n
		}
	}
	return strconv.Itoa(int(id))
}
