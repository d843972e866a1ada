package logic

import (
	"context"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// Holder signals.
const (
	HolderIn  signal.ID = 0
	HolderOut signal.ID = 1
)

// Holder turns a message stream into a state holding the latest message.
// Messages superseded within one settle are dropped.
type Holder struct {
	device.Base
	in  *signal.EventTargetLast[string]
	out *signal.StateSource[string]
}

// NewHolder creates a holder with an empty message.
func NewHolder() *Holder {
	return &Holder{
		in:  signal.NewEventTargetLast[string](),
		out: signal.NewStateSourceWith(""),
	}
}

func (h *Holder) Class() string { return ClassHolder }

func (h *Holder) Signals() signal.Map {
	return signal.Map{HolderIn: h.in, HolderOut: h.out}
}

func (h *Holder) SignalNames() map[signal.ID]string {
	return map[signal.ID]string{HolderIn: "in", HolderOut: "out"}
}

func (h *Holder) TargetsChanged() {
	if v, ok := h.in.TakePending(); ok {
		h.NotifySources(h.out.Set(v))
	}
}

func (h *Holder) Run(ctx context.Context) device.Exited {
	return device.Idle(ctx)
}
