package hardware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/mash-protocol/mash-logic/pkg/bus"
	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/retry"
	"github.com/mash-protocol/mash-logic/pkg/signal"
	"github.com/mash-protocol/mash-logic/pkg/wake"
)

// DefaultWriteAttempts bounds the retries of one relay write.
const DefaultWriteAttempts = 5

// RelaysConfig configures a relay board driver.
type RelaysConfig struct {
	Address  bus.Address  `mapstructure:"address"`
	Channels int          `mapstructure:"channels"`
	Attempts int          `mapstructure:"attempts"`
	Backoff  retry.Config `mapstructure:"backoff"`
}

// Relays drives a relay board. Channel i is target signal i; the fault
// signal follows the last channel.
type Relays struct {
	device.Base
	bus    bus.Bus
	cfg    RelaysConfig
	logger *slog.Logger

	channels []*signal.StateTargetLast[bool]
	fault    *signal.StateSource[bool]
	backoff  *retry.Backoff
	dirty    wake.Signal

	mu      sync.Mutex
	desired []bool

	writes atomic.Uint64
}

// NewRelays creates a relay board driver. All relays start off; the first
// write happens as soon as the task runs.
func NewRelays(b bus.Bus, cfg RelaysConfig, logger *slog.Logger) (*Relays, error) {
	if b == nil {
		return nil, ErrNoBus
	}
	if cfg.Channels <= 0 {
		return nil, fmt.Errorf("channels must be positive, got %d", cfg.Channels)
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultWriteAttempts
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Relays{
		bus:      b,
		cfg:      cfg,
		logger:   logger,
		channels: make([]*signal.StateTargetLast[bool], cfg.Channels),
		fault:    signal.NewStateSourceWith(false),
		backoff:  retry.NewBackoffWithConfig(cfg.Backoff),
		desired:  make([]bool, cfg.Channels),
	}
	for i := range r.channels {
		r.channels[i] = signal.NewStateTargetLast[bool]()
	}
	r.dirty.Wake()
	return r, nil
}

func (r *Relays) Class() string { return ClassRelays }

// FaultID returns the ID of the fault signal.
func (r *Relays) FaultID() signal.ID { return signal.ID(r.cfg.Channels) }

func (r *Relays) Signals() signal.Map {
	m := make(signal.Map, len(r.channels)+1)
	for i, ch := range r.channels {
		m[signal.ID(i)] = ch
	}
	m[r.FaultID()] = r.fault
	return m
}

func (r *Relays) SignalNames() map[signal.ID]string {
	names := make(map[signal.ID]string, len(r.channels)+1)
	for i := range r.channels {
		names[signal.ID(i)] = fmt.Sprintf("out%d", i)
	}
	names[r.FaultID()] = "fault"
	return names
}

// TargetsChanged records the new relay states and wakes the task.
func (r *Relays) TargetsChanged() {
	changed := false
	r.mu.Lock()
	for i, ch := range r.channels {
		if v, ok := ch.TakePending(); ok {
			r.desired[i] = v
			changed = true
		}
	}
	r.mu.Unlock()

	if changed {
		r.dirty.Wake()
	}
}

// Desired returns the relay states last requested.
func (r *Relays) Desired() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.desired)
}

// Run writes the desired states to the board whenever they change.
func (r *Relays) Run(ctx context.Context) device.Exited {
	for {
		if err := r.dirty.Wait(ctx); err != nil {
			return device.Exited{}
		}
		if err := r.flush(ctx); err != nil && ctx.Err() == nil {
			r.logger.Warn("relay board write failed",
				"address", r.cfg.Address.String(), "error", err)
		}
	}
}

// flush writes the latest desired states, retrying with backoff. Every
// attempt writes the states current at that time.
func (r *Relays) flush(ctx context.Context) error {
	err := retry.Do(ctx, r.backoff, r.cfg.Attempts, func(ctx context.Context) error {
		err := r.bus.WriteOutputs(ctx, r.cfg.Address, r.Desired())
		if errors.Is(err, bus.ErrChannels) || errors.Is(err, bus.ErrNoBoard) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		if ctx.Err() == nil {
			r.NotifySources(r.fault.Set(true))
		}
		return err
	}
	r.writes.Add(1)
	r.NotifySources(r.fault.Set(false))
	return nil
}

// HandleRequest implements device.RequestHandler.
//
//	status  returns desired states, write count and the fault flag
func (r *Relays) HandleRequest(_ context.Context, req device.Request) device.Response {
	if req.Method != "status" {
		return device.Fail(device.StatusInvalidMethod, fmt.Sprintf("unknown method %q", req.Method))
	}
	fault, _ := r.fault.PeekLast()
	return device.OK(map[string]any{
		"address": r.cfg.Address.String(),
		"desired": r.Desired(),
		"writes":  r.writes.Load(),
		"fault":   fault,
	})
}
