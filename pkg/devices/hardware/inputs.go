package hardware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mash-protocol/mash-logic/pkg/bus"
	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/retry"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// DefaultPollInterval is the input poll interval.
const DefaultPollInterval = 100 * time.Millisecond

// ErrNoBus is returned when a driver is built without a bus.
var ErrNoBus = errors.New("hardware driver needs a bus")

// InputsConfig configures an input board driver.
type InputsConfig struct {
	Address  bus.Address   `mapstructure:"address"`
	Channels int           `mapstructure:"channels"`
	Poll     time.Duration `mapstructure:"poll"`
	Backoff  retry.Config  `mapstructure:"backoff"`
}

// Inputs polls a digital input board. Channel i is signal i; the fault
// signal follows the last channel.
type Inputs struct {
	device.Base
	bus    bus.Bus
	cfg    InputsConfig
	logger *slog.Logger

	bank    *signal.StateSourceBank[bool]
	fault   *signal.StateSource[bool]
	backoff *retry.Backoff

	polls    atomic.Uint64
	failures atomic.Uint64
}

// NewInputs creates an input board driver.
func NewInputs(b bus.Bus, cfg InputsConfig, logger *slog.Logger) (*Inputs, error) {
	if b == nil {
		return nil, ErrNoBus
	}
	if cfg.Channels <= 0 {
		return nil, fmt.Errorf("channels must be positive, got %d", cfg.Channels)
	}
	if cfg.Poll <= 0 {
		cfg.Poll = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Inputs{
		bus:     b,
		cfg:     cfg,
		logger:  logger,
		bank:    signal.NewStateSourceBank[bool](cfg.Channels),
		fault:   signal.NewStateSourceWith(false),
		backoff: retry.NewBackoffWithConfig(cfg.Backoff),
	}, nil
}

func (in *Inputs) Class() string { return ClassInputs }

// FaultID returns the ID of the fault signal.
func (in *Inputs) FaultID() signal.ID { return signal.ID(in.cfg.Channels) }

func (in *Inputs) Signals() signal.Map {
	m := make(signal.Map, in.cfg.Channels+1)
	for i := range in.cfg.Channels {
		m[signal.ID(i)] = in.bank.Channel(i)
	}
	m[in.FaultID()] = in.fault
	return m
}

func (in *Inputs) SignalNames() map[signal.ID]string {
	names := make(map[signal.ID]string, in.cfg.Channels+1)
	for i := range in.cfg.Channels {
		names[signal.ID(i)] = fmt.Sprintf("in%d", i)
	}
	names[in.FaultID()] = "fault"
	return names
}

func (in *Inputs) TargetsChanged() {}

// Run polls the board until ctx is done. After a failed read the next poll
// is delayed by the backoff instead of the poll interval.
func (in *Inputs) Run(ctx context.Context) device.Exited {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return device.Exited{}
		case <-timer.C:
		}

		delay := in.cfg.Poll
		if err := in.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return device.Exited{}
			}
			delay = in.backoff.Next()
			in.logger.Warn("input board read failed",
				"address", in.cfg.Address.String(), "error", err, "retry_in", delay)
		}
		timer.Reset(delay)
	}
}

// Poll reads the board once and publishes the result.
func (in *Inputs) Poll(ctx context.Context) error {
	in.polls.Add(1)
	values, err := in.bus.ReadInputs(ctx, in.cfg.Address)
	if err == nil && len(values) != in.cfg.Channels {
		err = fmt.Errorf("%w: want %d inputs, board has %d", bus.ErrChannels, in.cfg.Channels, len(values))
	}
	if err != nil {
		in.failures.Add(1)
		in.NotifySources(in.fault.Set(true))
		return err
	}

	in.backoff.Reset()
	changed := in.bank.SetMany(values)
	cleared := in.fault.Set(false)
	in.NotifySources(changed || cleared)
	return nil
}

// HandleRequest implements device.RequestHandler.
//
//	status  returns poll and failure counts and the fault flag
func (in *Inputs) HandleRequest(_ context.Context, req device.Request) device.Response {
	if req.Method != "status" {
		return device.Fail(device.StatusInvalidMethod, fmt.Sprintf("unknown method %q", req.Method))
	}
	fault, _ := in.fault.PeekLast()
	return device.OK(map[string]any{
		"address":  in.cfg.Address.String(),
		"polls":    in.polls.Load(),
		"failures": in.failures.Load(),
		"fault":    fault,
	})
}
