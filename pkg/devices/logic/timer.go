package logic

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/duration"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// TimerMode selects how a Timer shapes its output.
type TimerMode string

const (
	// TimerPulse raises out for the duration on each rising input. A new
	// rising input while the pulse runs restarts it.
	TimerPulse TimerMode = "pulse"

	// TimerOnDelay raises out once in has stayed true for the duration and
	// drops it as soon as in falls.
	TimerOnDelay TimerMode = "on-delay"

	// TimerOffDelay raises out with in and keeps it raised for the duration
	// after in falls.
	TimerOffDelay TimerMode = "off-delay"
)

// ParseTimerMode parses a mode name. The empty string means TimerPulse.
func ParseTimerMode(s string) (TimerMode, error) {
	switch m := TimerMode(s); m {
	case "":
		return TimerPulse, nil
	case TimerPulse, TimerOnDelay, TimerOffDelay:
		return m, nil
	default:
		return "", fmt.Errorf("unknown timer mode %q", s)
	}
}

// TimerStatus is the payload of the "status" request.
type TimerStatus struct {
	Mode      TimerMode
	Duration  time.Duration
	Outputs   []bool
	Remaining map[string]time.Duration
}

// Timer is a bank of independent boolean timers. Channel i reads in<i>
// (signal i) and drives out<i> (signal channels+i).
type Timer struct {
	device.Base
	mode   TimerMode
	width  time.Duration
	in     []*signal.StateTargetLast[bool]
	out    *signal.StateSourceBank[bool]
	timers *duration.Manager

	mu   sync.Mutex
	last []bool
	gen  []uint64
}

type timerToken struct {
	channel int
	gen     uint64
}

// NewTimer creates a timer bank. All outputs start false.
func NewTimer(mode TimerMode, width time.Duration, channels int) (*Timer, error) {
	if _, err := ParseTimerMode(string(mode)); err != nil {
		return nil, err
	}
	if err := duration.CheckDuration(width); err != nil {
		return nil, fmt.Errorf("%w: %s (must be %s..%s)", err, width, duration.MinDuration, duration.MaxDuration)
	}
	if channels < 1 {
		return nil, fmt.Errorf("timer needs at least one channel, got %d", channels)
	}

	t := &Timer{
		mode:   mode,
		width:  width,
		in:     make([]*signal.StateTargetLast[bool], channels),
		out:    signal.NewStateSourceBank[bool](channels),
		timers: duration.NewManager(),
		last:   make([]bool, channels),
		gen:    make([]uint64, channels),
	}
	for i := range t.in {
		t.in[i] = signal.NewStateTargetLast[bool]()
	}
	t.out.SetMany(make([]bool, channels))
	t.timers.OnExpiry(t.expired)
	return t, nil
}

func (t *Timer) Class() string { return ClassTimer }

func (t *Timer) Signals() signal.Map {
	n := len(t.in)
	m := make(signal.Map, 2*n)
	for i := range n {
		m[signal.ID(i)] = t.in[i]
		m[signal.ID(n+i)] = t.out.Channel(i)
	}
	return m
}

func (t *Timer) SignalNames() map[signal.ID]string {
	n := len(t.in)
	names := make(map[signal.ID]string, 2*n)
	for i := range n {
		names[signal.ID(i)] = "in" + strconv.Itoa(i)
		names[signal.ID(n+i)] = "out" + strconv.Itoa(i)
	}
	return names
}

// Outputs returns the current output values.
func (t *Timer) Outputs() []bool {
	return t.out.PeekLast()
}

func (t *Timer) TargetsChanged() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, in := range t.in {
		v, ok := in.TakePending()
		if !ok {
			continue
		}
		prev := t.last[i]
		t.last[i] = v

		switch t.mode {
		case TimerPulse:
			if v && !prev {
				t.set(i, true)
				t.start(i)
			}
		case TimerOnDelay:
			if v && !prev {
				t.start(i)
			} else if !v {
				t.stop(i)
				t.set(i, false)
			}
		case TimerOffDelay:
			if v {
				t.stop(i)
				t.set(i, true)
			} else if prev {
				t.start(i)
			}
		}
	}
}

// start (re)arms channel i. The caller holds t.mu.
func (t *Timer) start(i int) {
	t.gen[i]++
	// The width was validated in NewTimer.
	_ = t.timers.SetTimer(t.key(i), t.width, timerToken{channel: i, gen: t.gen[i]})
}

// stop disarms channel i. The caller holds t.mu.
func (t *Timer) stop(i int) {
	t.gen[i]++
	_ = t.timers.CancelTimer(t.key(i))
}

func (t *Timer) set(i int, v bool) {
	t.NotifySources(t.out.Set(i, v))
}

func (t *Timer) key(i int) string {
	return "out" + strconv.Itoa(i)
}

// expired runs on the timer goroutine. Tokens from a timer that was
// restarted or stopped in the meantime are dropped.
func (t *Timer) expired(_ string, value any) {
	tok := value.(timerToken)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen[tok.channel] != tok.gen {
		return
	}
	t.set(tok.channel, t.mode == TimerOnDelay)
}

func (t *Timer) HandleRequest(_ context.Context, req device.Request) device.Response {
	switch req.Method {
	case "status":
		st := TimerStatus{
			Mode:      t.mode,
			Duration:  t.width,
			Outputs:   t.Outputs(),
			Remaining: make(map[string]time.Duration),
		}
		for _, key := range t.timers.Active() {
			if tm := t.timers.GetTimer(key); tm != nil {
				st.Remaining[key] = tm.RemainingTime()
			}
		}
		return device.OK(st)
	default:
		return device.Fail(device.StatusInvalidMethod, fmt.Sprintf("unknown method %q", req.Method))
	}
}

// Run waits for ctx and then cancels every pending timer.
func (t *Timer) Run(ctx context.Context) device.Exited {
	<-ctx.Done()
	t.timers.CancelAll()
	return device.Exited{}
}
