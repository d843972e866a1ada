// Package inspect provides signal inspection utilities for a running device
// set.
//
// The inspect package offers a unified interface for:
//   - Parsing signal references (e.g., "inv1/0" or "inv1/out")
//   - Resolving signal names to numeric IDs
//   - Reading signal values and sending device requests
//   - Formatting output for display
package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
	"github.com/mash-protocol/mash-logic/pkg/topology"
)

// Path errors.
var (
	ErrEmptyPath     = errors.New("empty path")
	ErrInvalidPath   = errors.New("invalid path format")
	ErrInvalidNumber = errors.New("invalid numeric value in path")
	ErrUnknownSignal = errors.New("unknown signal name")
)

// Path represents a parsed signal reference.
// Format: device[/signal]
type Path struct {
	// Device is the device name.
	Device string

	// SignalID is the numeric signal ID (when SignalName is empty).
	SignalID signal.ID

	// SignalName is the symbolic signal name, resolved against the device.
	SignalName string

	// IsPartial indicates the path names a device only.
	IsPartial bool

	// Raw stores the original input string.
	Raw string
}

// ParsePath parses a reference string into a Path.
//
// Supported formats:
//   - "device" - partial (for listing signals)
//   - "device/3" - numeric signal ID
//   - "device/0x0a" - hex signal ID
//   - "device/out" - named signal
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}

	if strings.HasPrefix(input, "/") || strings.HasSuffix(input, "/") || strings.Contains(input, "//") {
		return nil, ErrInvalidPath
	}

	parts := strings.Split(input, "/")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, input)
	}

	p := &Path{Raw: input, Device: parts[0]}
	if len(parts) == 1 {
		p.IsPartial = true
		return p, nil
	}

	if !isNumeric(parts[1]) {
		p.SignalName = parts[1]
		return p, nil
	}
	id, err := parseSignalID(parts[1])
	if err != nil {
		return nil, fmt.Errorf("signal: %w", err)
	}
	p.SignalID = id
	return p, nil
}

// ParseRef parses a full "device/signal" reference with a numeric signal.
func ParseRef(input string) (topology.Ref, error) {
	p, err := ParsePath(input)
	if err != nil {
		return topology.Ref{}, err
	}
	if p.IsPartial {
		return topology.Ref{}, fmt.Errorf("%w: %s: missing signal", ErrInvalidPath, input)
	}
	if p.SignalName != "" {
		return topology.Ref{}, fmt.Errorf("%w: %s", ErrUnknownSignal, input)
	}
	return topology.Ref{Device: p.Device, Signal: p.SignalID}, nil
}

// Ref resolves the path to a topology reference. Named signals are looked up
// on the device found in set. A name that cannot be resolved, or a device
// that does not exist, yields an error.
func (p *Path) Ref(set *device.Set) (topology.Ref, error) {
	if p.IsPartial {
		return topology.Ref{}, fmt.Errorf("%w: %s: missing signal", ErrInvalidPath, p.Raw)
	}
	if p.SignalName == "" {
		return topology.Ref{Device: p.Device, Signal: p.SignalID}, nil
	}

	entry, err := set.Lookup(p.Device)
	if err != nil {
		return topology.Ref{}, err
	}
	id, ok := ResolveSignalName(entry.Device, p.SignalName)
	if !ok {
		return topology.Ref{}, fmt.Errorf("%w: %s", ErrUnknownSignal, p.Raw)
	}
	return topology.Ref{Device: p.Device, Signal: id}, nil
}

// String returns the path as a string.
func (p *Path) String() string {
	if p.IsPartial {
		return p.Device
	}
	if p.SignalName != "" {
		return p.Device + "/" + p.SignalName
	}
	return p.Device + "/" + strconv.Itoa(int(p.SignalID))
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return true
	}
	return s[0] >= '0' && s[0] <= '9'
}

// parseSignalID parses a signal ID from decimal or hex string.
func parseSignalID(s string) (signal.ID, error) {
	var v uint64
	var err error

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 16)
	} else {
		v, err = strconv.ParseUint(s, 10, 16)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidNumber, s)
	}
	return signal.ID(v), nil
}
