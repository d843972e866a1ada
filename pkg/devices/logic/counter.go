package logic

import (
	"context"
	"fmt"
	"sync"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
	"github.com/mash-protocol/mash-logic/pkg/wake"
)

// Counter signals.
const (
	CounterIn    signal.ID = 0
	CounterCount signal.ID = 1
)

// CountMode selects which edges a counter counts.
type CountMode string

// Count modes.
const (
	CountBoth    CountMode = "both"
	CountRising  CountMode = "rising"
	CountFalling CountMode = "falling"
)

// Counts reports whether the mode counts e.
func (m CountMode) Counts(e Edge) bool {
	switch m {
	case CountRising:
		return e == Rising
	case CountFalling:
		return e == Falling
	default:
		return true
	}
}

// ParseCountMode parses a count mode; empty means both.
func ParseCountMode(s string) (CountMode, error) {
	switch CountMode(s) {
	case "", CountBoth:
		return CountBoth, nil
	case CountRising, CountFalling:
		return CountMode(s), nil
	default:
		return "", fmt.Errorf("unknown count mode %q", s)
	}
}

// Counter counts edge events. Every event is seen; the input is queued.
type Counter struct {
	device.Base
	in     *signal.EventTargetQueued[Edge]
	out    *signal.StateSource[int64]
	mode   CountMode
	change wake.Signal

	mu    sync.Mutex
	count int64
}

// NewCounter creates a counter at zero.
func NewCounter(mode CountMode) *Counter {
	return &Counter{
		in:   signal.NewEventTargetQueued[Edge](),
		out:  signal.NewStateSourceWith[int64](0),
		mode: mode,
	}
}

func (c *Counter) Class() string { return ClassCounter }

func (c *Counter) Signals() signal.Map {
	return signal.Map{CounterIn: c.in, CounterCount: c.out}
}

func (c *Counter) SignalNames() map[signal.ID]string {
	return map[signal.ID]string{CounterIn: "in", CounterCount: "count"}
}

func (c *Counter) TargetsChanged() {
	edges := c.in.TakePending()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range edges {
		if c.mode.Counts(e) {
			c.count++
		}
	}
	c.publish()
}

// publish copies the count to the output. The caller holds c.mu, so the
// output always ends on the latest count.
func (c *Counter) publish() {
	changed := c.out.Set(c.count)
	c.NotifySources(changed)
	if changed {
		c.change.Wake()
	}
}

func (c *Counter) Run(ctx context.Context) device.Exited {
	return device.Idle(ctx)
}

// Count returns the current count.
func (c *Counter) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// swap sets the count to n and returns the previous count.
func (c *Counter) swap(n int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.count
	c.count = n
	c.publish()
	return prev
}

// HandleRequest implements device.RequestHandler.
//
//	get    returns the count
//	reset  sets the count to zero, returns the previous count
func (c *Counter) HandleRequest(_ context.Context, req device.Request) device.Response {
	switch req.Method {
	case "get":
		return device.OK(c.Count())
	case "reset":
		return device.OK(c.swap(0))
	default:
		return device.Fail(device.StatusInvalidMethod, fmt.Sprintf("unknown method %q", req.Method))
	}
}

// ChangeStream implements device.ChangeStreamer.
func (c *Counter) ChangeStream() *wake.Signal { return &c.change }

// Summary implements device.ChangeStreamer.
func (c *Counter) Summary() any { return c.Count() }

// Retained implements device.Retainer.
func (c *Counter) Retained() map[string]any {
	return map[string]any{"count": c.Count()}
}

// Restore implements device.Retainer.
func (c *Counter) Restore(values map[string]any) error {
	raw, ok := values["count"]
	if !ok {
		return nil
	}
	n, err := convert[int64](raw)
	if err != nil {
		return fmt.Errorf("restore count: %w", err)
	}
	c.swap(n)
	return nil
}
