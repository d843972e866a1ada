package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mash-protocol/mash-logic/pkg/bus"
	"github.com/mash-protocol/mash-logic/pkg/inspect"
	"github.com/mash-protocol/mash-logic/pkg/version"
)

// Validate checks the document and returns every problem found, joined
// with errors.Join. Each problem wraps ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if err := version.Check(c.Version); err != nil {
		add("version: %w", err)
	}
	if c.Runtime.MaxRounds < 1 {
		add("runtime.max_rounds must be at least 1, got %d", c.Runtime.MaxRounds)
	}
	if c.Runtime.ShutdownTimeout < 0 {
		add("runtime.shutdown_timeout must not be negative")
	}

	switch c.Bus.Kind {
	case BusNone:
		if len(c.Bus.Boards) > 0 {
			add("bus.boards given but bus.kind is %q", BusNone)
		}
	case BusSimulated:
		seen := make(map[bus.Address]bool)
		for i, b := range c.Bus.Boards {
			if seen[b.Address] {
				add("bus.boards[%d]: duplicate address %s", i, b.Address)
			}
			seen[b.Address] = true
			if b.Inputs < 0 || b.Outputs < 0 {
				add("bus.boards[%d]: negative channel count", i)
			}
		}
	default:
		add("bus.kind %q is unknown", c.Bus.Kind)
	}

	names := make(map[string]bool)
	for i, d := range c.Devices {
		switch {
		case d.Name == "":
			add("devices[%d]: name is required", i)
		case strings.ContainsAny(d.Name, "/ \t\n"):
			add("devices[%d]: name %q contains '/' or whitespace", i, d.Name)
		case names[d.Name]:
			add("devices[%d]: duplicate name %q", i, d.Name)
		}
		names[d.Name] = true
		if d.Class == "" {
			add("devices[%d] (%s): class is required", i, d.Name)
		}
	}

	// Only the syntax of refs is checked here. Refs to devices or signals
	// that do not exist are reported by connection resolution, together
	// with every other resolution failure.
	checkRef := func(where, ref string) {
		p, err := inspect.ParsePath(ref)
		if err != nil {
			add("%s: %q: %v", where, ref, err)
			return
		}
		if p.IsPartial {
			add("%s: %q names no signal", where, ref)
		}
	}

	for i, conn := range c.Connections {
		where := fmt.Sprintf("connections[%d]", i)
		checkRef(where+".from", conn.From)
		if len(conn.To) == 0 {
			add("%s: no targets for %q", where, conn.From)
		}
		for j, to := range conn.To {
			checkRef(fmt.Sprintf("%s.to[%d]", where, j), to)
		}
	}

	return errors.Join(errs...)
}
