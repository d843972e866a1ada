package logic

import (
	"context"
	"fmt"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
	"github.com/mash-protocol/mash-logic/pkg/wake"
)

// ConstantOut is the output of a constant.
const ConstantOut signal.ID = 0

// Constant publishes a configured value. Requests can change it.
type Constant[V signal.StateValue] struct {
	device.Base
	out    *signal.StateSource[V]
	change wake.Signal
}

// NewConstant creates a constant holding initial.
func NewConstant[V signal.StateValue](initial V) *Constant[V] {
	return &Constant[V]{out: signal.NewStateSourceWith(initial)}
}

// NewConstantOf creates a constant of the given type from a configuration
// value.
func NewConstantOf(t ValueType, value any) (device.Device, error) {
	switch t {
	case TypeBool:
		return newConstantFrom[bool](value)
	case TypeInt:
		return newConstantFrom[int64](value)
	case TypeFloat:
		return newConstantFrom[float64](value)
	case TypeString:
		return newConstantFrom[string](value)
	default:
		return nil, fmt.Errorf("unknown value type %q", t)
	}
}

func newConstantFrom[V signal.StateValue](raw any) (device.Device, error) {
	v, err := convert[V](raw)
	if err != nil {
		return nil, err
	}
	return NewConstant(v), nil
}

func (c *Constant[V]) Class() string { return ClassConstant }

func (c *Constant[V]) Signals() signal.Map {
	return signal.Map{ConstantOut: c.out}
}

func (c *Constant[V]) SignalNames() map[signal.ID]string {
	return map[signal.ID]string{ConstantOut: "out"}
}

func (c *Constant[V]) TargetsChanged() {}

func (c *Constant[V]) Run(ctx context.Context) device.Exited {
	return device.Idle(ctx)
}

// Value returns the current value.
func (c *Constant[V]) Value() V {
	v, _ := c.out.PeekLast()
	return v
}

// Set changes the value and reports whether it differed.
func (c *Constant[V]) Set(v V) bool {
	changed := c.out.Set(v)
	c.NotifySources(changed)
	if changed {
		c.change.Wake()
	}
	return changed
}

// HandleRequest implements device.RequestHandler.
//
//	get          returns the value
//	set <value>  changes the value, returns whether it changed
func (c *Constant[V]) HandleRequest(_ context.Context, req device.Request) device.Response {
	switch req.Method {
	case "get":
		return device.OK(c.Value())
	case "set":
		if len(req.Args) != 1 {
			return device.Fail(device.StatusInvalidParameter, "set takes exactly one value")
		}
		v, err := convert[V](req.Args[0])
		if err != nil {
			return device.Fail(device.StatusInvalidParameter, err.Error())
		}
		return device.OK(c.Set(v))
	default:
		return device.Fail(device.StatusInvalidMethod, fmt.Sprintf("unknown method %q", req.Method))
	}
}

// ChangeStream implements device.ChangeStreamer.
func (c *Constant[V]) ChangeStream() *wake.Signal { return &c.change }

// Summary implements device.ChangeStreamer.
func (c *Constant[V]) Summary() any { return c.Value() }

// Retained implements device.Retainer.
func (c *Constant[V]) Retained() map[string]any {
	return map[string]any{"value": c.Value()}
}

// Restore implements device.Retainer.
func (c *Constant[V]) Restore(values map[string]any) error {
	raw, ok := values["value"]
	if !ok {
		return nil
	}
	v, err := convert[V](raw)
	if err != nil {
		return fmt.Errorf("restore value: %w", err)
	}
	c.Set(v)
	return nil
}
