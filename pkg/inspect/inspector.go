package inspect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// Inspector errors.
var (
	ErrSignalNotFound = errors.New("signal not found")
	ErrNotReadable    = errors.New("signal has no readable value")
	ErrNoChangeStream = errors.New("device has no change stream")
	ErrPartialPath    = errors.New("path names no signal")
)

// Inspector provides read access and request dispatch for a device set.
type Inspector struct {
	set *device.Set
}

// NewInspector creates a new Inspector for the given set.
func NewInspector(set *device.Set) *Inspector {
	return &Inspector{set: set}
}

// DeviceInfo represents a device for display.
type DeviceInfo struct {
	ID       device.ID
	Name     string
	Class    string
	Requests bool
	Streams  bool
	Signals  []SignalInfo
}

// SignalInfo represents one signal for display.
type SignalInfo struct {
	ID       signal.ID
	Name     string
	Role     signal.Role
	Type     signal.TypeTag
	Value    any
	HasValue bool
}

// Devices returns every device in declaration order.
func (i *Inspector) Devices() []DeviceInfo {
	entries := i.set.Entries()
	out := make([]DeviceInfo, len(entries))
	for n, e := range entries {
		out[n] = inspectEntry(e)
	}
	return out
}

// InspectDevice returns information about the named device.
func (i *Inspector) InspectDevice(name string) (*DeviceInfo, error) {
	entry, err := i.set.Lookup(name)
	if err != nil {
		return nil, err
	}
	info := inspectEntry(entry)
	return &info, nil
}

func inspectEntry(e device.Entry) DeviceInfo {
	_, requests := e.Device.(device.RequestHandler)
	_, streams := e.Device.(device.ChangeStreamer)
	info := DeviceInfo{
		ID:       e.ID,
		Name:     e.Name,
		Class:    e.Device.Class(),
		Requests: requests,
		Streams:  streams,
	}
	signals := e.Device.Signals()
	for _, id := range signals.IDs() {
		info.Signals = append(info.Signals, inspectSignal(e.Device, id, signals[id]))
	}
	return info
}

func inspectSignal(dev device.Device, id signal.ID, h signal.Handle) SignalInfo {
	info := SignalInfo{
		ID:   id,
		Name: SignalName(dev, id),
		Role: h.Role(),
		Type: h.Type(),
	}
	if src, ok := h.(signal.StateSourceHandle); ok {
		info.Value, info.HasValue = src.PeekLastAny()
	}
	return info
}

// ReadSignal reads the current value of a state source.
func (i *Inspector) ReadSignal(path *Path) (SignalInfo, error) {
	if path.IsPartial {
		return SignalInfo{}, fmt.Errorf("%w: %s", ErrPartialPath, path.Raw)
	}
	ref, err := path.Ref(i.set)
	if err != nil {
		return SignalInfo{}, err
	}
	entry, err := i.set.Lookup(ref.Device)
	if err != nil {
		return SignalInfo{}, err
	}
	h, ok := entry.Device.Signals()[ref.Signal]
	if !ok {
		return SignalInfo{}, fmt.Errorf("%w: %s", ErrSignalNotFound, ref)
	}
	info := inspectSignal(entry.Device, ref.Signal, h)
	if h.Role() != signal.RoleStateSource {
		return info, fmt.Errorf("%w: %s is %s", ErrNotReadable, ref, FormatRole(h.Role()))
	}
	return info, nil
}

// Request sends a request to the named device.
func (i *Inspector) Request(ctx context.Context, name string, req device.Request) (device.Response, error) {
	entry, err := i.set.Lookup(name)
	if err != nil {
		return device.Response{}, err
	}
	return device.Dispatch(ctx, entry.Device, req), nil
}

// WaitChange blocks until the named device's change stream fires, then
// returns its summary.
func (i *Inspector) WaitChange(ctx context.Context, name string) (any, error) {
	entry, err := i.set.Lookup(name)
	if err != nil {
		return nil, err
	}
	cs, ok := entry.Device.(device.ChangeStreamer)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoChangeStream, name)
	}
	if err := cs.ChangeStream().Wait(ctx); err != nil {
		return nil, err
	}
	return cs.Summary(), nil
}

// FormatDevices formats the device list for display.
func (i *Inspector) FormatDevices(devices []DeviceInfo, formatter *Formatter) string {
	if formatter == nil {
		formatter = NewFormatter()
	}

	var sb strings.Builder
	for _, d := range devices {
		line := fmt.Sprintf("%s (%s), %d signals", d.Name, d.Class, len(d.Signals))
		if formatter.ShowIDs {
			line = fmt.Sprintf("[%d] %s", d.ID, line)
		}
		var caps []string
		if d.Requests {
			caps = append(caps, "requests")
		}
		if d.Streams {
			caps = append(caps, "stream")
		}
		if len(caps) > 0 {
			line += " [" + strings.Join(caps, ", ") + "]"
		}
		sb.WriteString(formatter.Indent(0, line) + "\n")
	}
	return sb.String()
}

// FormatDevice formats one device with its signals for display.
func (i *Inspector) FormatDevice(info *DeviceInfo, formatter *Formatter) string {
	if formatter == nil {
		formatter = NewFormatter()
	}

	rows := make([]SignalRow, len(info.Signals))
	for n, s := range info.Signals {
		row := SignalRow{
			ID:   s.ID,
			Name: s.Name,
			Role: FormatRole(s.Role),
			Type: s.Type.Name(),
		}
		if s.HasValue {
			row.Value = formatter.FormatValue(s.Value)
		}
		rows[n] = row
	}

	header := fmt.Sprintf("Device: %s (%s)\n", info.Name, info.Class)
	return header + formatter.FormatSignalTable(rows)
}
