package logic

import (
	"context"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// Inverter signals.
const (
	InverterIn  signal.ID = 0
	InverterOut signal.ID = 1
)

// Inverter negates a boolean state. An unconnected input reads as false, so
// the output starts true.
type Inverter struct {
	device.Base
	in  *signal.StateTargetLast[bool]
	out *signal.StateSource[bool]
}

// NewInverter creates an inverter.
func NewInverter() *Inverter {
	return &Inverter{
		in:  signal.NewStateTargetLast[bool](),
		out: signal.NewStateSourceWith(true),
	}
}

func (i *Inverter) Class() string { return ClassInverter }

func (i *Inverter) Signals() signal.Map {
	return signal.Map{InverterIn: i.in, InverterOut: i.out}
}

func (i *Inverter) SignalNames() map[signal.ID]string {
	return map[signal.ID]string{InverterIn: "in", InverterOut: "out"}
}

func (i *Inverter) TargetsChanged() {
	if v, ok := i.in.TakePending(); ok {
		i.NotifySources(i.out.Set(!v))
	}
}

func (i *Inverter) Run(ctx context.Context) device.Exited {
	return device.Idle(ctx)
}
