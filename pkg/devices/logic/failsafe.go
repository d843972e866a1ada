package logic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/failsafe"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// Failsafe signals.
const (
	FailsafeFault  signal.ID = 0
	FailsafeActive signal.ID = 1
)

// FailsafeStatus is the payload of the "status" request.
type FailsafeStatus struct {
	State     string
	Active    bool
	Duration  time.Duration
	Grace     time.Duration
	Remaining time.Duration
}

// Failsafe watches a fault flag, typically a hardware fault signal. active
// rises once fault has stayed true for the duration and falls after fault
// has stayed false for the grace period.
type Failsafe struct {
	device.Base
	fault  *signal.StateTargetLast[bool]
	active *signal.StateSource[bool]
	timer  *failsafe.Timer

	mu sync.Mutex
}

// NewFailsafe creates a failsafe watchdog. A zero duration selects
// failsafe.DefaultDuration.
func NewFailsafe(d, grace time.Duration) (*Failsafe, error) {
	timer, err := failsafe.NewTimerWithConfig(failsafe.Config{Duration: d, GracePeriod: grace})
	if err != nil {
		return nil, fmt.Errorf("%w (duration must be %s..%s)", err, failsafe.MinDuration, failsafe.MaxDuration)
	}
	f := &Failsafe{
		fault:  signal.NewStateTargetLast[bool](),
		active: signal.NewStateSourceWith(false),
		timer:  timer,
	}
	timer.OnStateChange(func(failsafe.State, failsafe.State) { f.sync() })
	return f, nil
}

func (f *Failsafe) Class() string { return ClassFailsafe }

func (f *Failsafe) Signals() signal.Map {
	return signal.Map{FailsafeFault: f.fault, FailsafeActive: f.active}
}

func (f *Failsafe) SignalNames() map[signal.ID]string {
	return map[signal.ID]string{FailsafeFault: "fault", FailsafeActive: "active"}
}

// State returns the watchdog state.
func (f *Failsafe) State() failsafe.State {
	return f.timer.State()
}

func (f *Failsafe) TargetsChanged() {
	v, ok := f.fault.TakePending()
	if !ok {
		return
	}
	if v {
		f.timer.Start()
	} else {
		f.timer.Stop()
	}
}

// sync copies the current timer state to active. It reads the state under
// f.mu, so the last caller always publishes the latest state.
func (f *Failsafe) sync() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NotifySources(f.active.Set(f.timer.State().Active()))
}

func (f *Failsafe) HandleRequest(_ context.Context, req device.Request) device.Response {
	switch req.Method {
	case "status":
		st := f.timer.State()
		return device.OK(FailsafeStatus{
			State:     st.String(),
			Active:    st.Active(),
			Duration:  f.timer.Duration(),
			Grace:     f.timer.GracePeriod(),
			Remaining: f.timer.RemainingTime(),
		})
	case "reset":
		f.timer.Reset()
		return device.OK(nil)
	default:
		return device.Fail(device.StatusInvalidMethod, fmt.Sprintf("unknown method %q", req.Method))
	}
}

// Run waits for ctx and then stops the pending timer.
func (f *Failsafe) Run(ctx context.Context) device.Exited {
	<-ctx.Done()
	f.timer.OnStateChange(nil)
	f.timer.Reset()
	return device.Exited{}
}
