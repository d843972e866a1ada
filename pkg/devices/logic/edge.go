package logic

import (
	"context"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// Edge is a transition of a boolean state.
type Edge uint8

const (
	// Rising is a false to true transition.
	Rising Edge = iota + 1

	// Falling is a true to false transition.
	Falling
)

// String returns the edge name.
func (e Edge) String() string {
	switch e {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	default:
		return "unknown"
	}
}

// Edge detector signals.
const (
	EdgeIn    signal.ID = 0
	EdgeEdges signal.ID = 1
)

// EdgeDetector emits one event per transition of its input. The input is
// queued so that short pulses inside a single settle are not lost. The
// input starts out false.
type EdgeDetector struct {
	device.Base
	in   *signal.StateTargetQueued[bool]
	out  *signal.EventSource[Edge]
	last bool
}

// NewEdgeDetector creates an edge detector.
func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{
		in:  signal.NewStateTargetQueued[bool](),
		out: signal.NewEventSource[Edge](),
	}
}

func (d *EdgeDetector) Class() string { return ClassEdge }

func (d *EdgeDetector) Signals() signal.Map {
	return signal.Map{EdgeIn: d.in, EdgeEdges: d.out}
}

func (d *EdgeDetector) SignalNames() map[signal.ID]string {
	return map[signal.ID]string{EdgeIn: "in", EdgeEdges: "edges"}
}

func (d *EdgeDetector) TargetsChanged() {
	var edges []Edge
	for _, v := range d.in.TakePending() {
		if v == d.last {
			continue
		}
		d.last = v
		if v {
			edges = append(edges, Rising)
		} else {
			edges = append(edges, Falling)
		}
	}
	d.NotifySources(d.out.PushMany(edges...))
}

func (d *EdgeDetector) Run(ctx context.Context) device.Exited {
	return device.Idle(ctx)
}
