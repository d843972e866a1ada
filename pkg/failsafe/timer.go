package failsafe

import (
	"errors"
	"sync"
	"time"
)

// Failsafe timer constants.
const (
	// MinDuration is the minimum failsafe duration.
	MinDuration = time.Millisecond

	// MaxDuration is the maximum failsafe duration.
	MaxDuration = 24 * time.Hour

	// DefaultDuration is the default failsafe duration.
	DefaultDuration = 5 * time.Second
)

// Timer errors.
var (
	ErrInvalidDuration = errors.New("invalid failsafe duration")
	ErrInvalidGrace    = errors.New("invalid grace period")
)

// State represents the failsafe state.
type State uint8

const (
	// StateNormal indicates no fault.
	StateNormal State = iota

	// StateTimerRunning indicates a fault whose timer has not expired yet.
	StateTimerRunning

	// StateFailsafe indicates the fault outlasted the duration.
	StateFailsafe

	// StateGracePeriod indicates a tripped fault cleared recently.
	StateGracePeriod
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNormal:
		return "NORMAL"
	case StateTimerRunning:
		return "TIMER_RUNNING"
	case StateFailsafe:
		return "FAILSAFE"
	case StateGracePeriod:
		return "GRACE_PERIOD"
	default:
		return "UNKNOWN"
	}
}

// Active reports whether the watchdog holds its safe output.
func (s State) Active() bool {
	return s == StateFailsafe || s == StateGracePeriod
}

// Config holds failsafe timer configuration.
type Config struct {
	Duration    time.Duration
	GracePeriod time.Duration
}

// Timer tracks how long a fault has persisted.
type Timer struct {
	mu sync.RWMutex

	state       State
	duration    time.Duration
	gracePeriod time.Duration

	// gen invalidates timers that were stopped after they fired.
	gen       uint64
	pending   *time.Timer
	startedAt time.Time

	onStateChange func(oldState, newState State)
}

// NewTimer creates a failsafe timer with default settings.
func NewTimer() *Timer {
	return &Timer{state: StateNormal, duration: DefaultDuration}
}

// NewTimerWithConfig creates a failsafe timer with custom configuration. A
// zero Duration selects DefaultDuration; a zero GracePeriod disables the
// grace period.
func NewTimerWithConfig(cfg Config) (*Timer, error) {
	if cfg.Duration != 0 && (cfg.Duration < MinDuration || cfg.Duration > MaxDuration) {
		return nil, ErrInvalidDuration
	}
	if cfg.GracePeriod < 0 || cfg.GracePeriod > MaxDuration {
		return nil, ErrInvalidGrace
	}

	t := NewTimer()
	if cfg.Duration != 0 {
		t.duration = cfg.Duration
	}
	t.gracePeriod = cfg.GracePeriod
	return t, nil
}

// State returns the current failsafe state.
func (t *Timer) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// IsFailsafe returns true if in failsafe mode.
func (t *Timer) IsFailsafe() bool {
	return t.State() == StateFailsafe
}

// Duration returns the configured failsafe duration.
func (t *Timer) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.duration
}

// GracePeriod returns the configured grace period.
func (t *Timer) GracePeriod() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gracePeriod
}

// SetDuration sets the failsafe duration. A running timer keeps the
// duration it was started with.
func (t *Timer) SetDuration(d time.Duration) error {
	if d < MinDuration || d > MaxDuration {
		return ErrInvalidDuration
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.duration = d
	return nil
}

// Start reports a fault. From the grace period the timer trips at once.
func (t *Timer) Start() {
	t.mu.Lock()
	old := t.state
	switch old {
	case StateNormal:
		t.state = StateTimerRunning
		t.startedAt = time.Now()
		t.arm(t.duration, StateTimerRunning, StateFailsafe)
	case StateGracePeriod:
		t.disarm()
		t.state = StateFailsafe
	default:
		t.mu.Unlock()
		return
	}
	t.notify(old)
}

// Stop reports that the fault cleared.
func (t *Timer) Stop() {
	t.mu.Lock()
	old := t.state
	switch old {
	case StateTimerRunning:
		t.disarm()
		t.state = StateNormal
	case StateFailsafe:
		if t.gracePeriod > 0 {
			t.state = StateGracePeriod
			t.arm(t.gracePeriod, StateGracePeriod, StateNormal)
		} else {
			t.state = StateNormal
		}
	default:
		t.mu.Unlock()
		return
	}
	t.notify(old)
}

// Reset returns to StateNormal and stops any pending timer.
func (t *Timer) Reset() {
	t.mu.Lock()
	old := t.state
	t.disarm()
	t.state = StateNormal
	t.startedAt = time.Time{}
	if old == StateNormal {
		t.mu.Unlock()
		return
	}
	t.notify(old)
}

// RemainingTime returns the time left until the timer trips, or 0 if it is
// not running.
func (t *Timer) RemainingTime() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.state != StateTimerRunning {
		return 0
	}
	return max(t.duration-time.Since(t.startedAt), 0)
}

// OnStateChange sets a callback for state changes. It runs without the
// timer's lock held, possibly on a timer goroutine.
func (t *Timer) OnStateChange(fn func(oldState, newState State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStateChange = fn
}

// arm schedules the move from one state to another. The caller holds t.mu.
func (t *Timer) arm(d time.Duration, from, to State) {
	t.disarm()
	gen := t.gen
	t.pending = time.AfterFunc(d, func() { t.expire(gen, from, to) })
}

// disarm stops the pending timer. The caller holds t.mu.
func (t *Timer) disarm() {
	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *Timer) expire(gen uint64, from, to State) {
	t.mu.Lock()
	if gen != t.gen || t.state != from {
		t.mu.Unlock()
		return
	}
	t.pending = nil
	t.state = to
	t.notify(from)
}

// notify releases t.mu and reports the move from old to the current state.
func (t *Timer) notify(old State) {
	fn := t.onStateChange
	cur := t.state
	t.mu.Unlock()

	if fn != nil {
		fn(old, cur)
	}
}
