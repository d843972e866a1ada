package failsafe

import (
	"sync"
	"testing"
	"time"
)

func waitState(t *testing.T, timer *Timer, want State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if timer.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("State() = %v, want %v", timer.State(), want)
}

func newTimer(t *testing.T, d, grace time.Duration) *Timer {
	t.Helper()
	timer, err := NewTimerWithConfig(Config{Duration: d, GracePeriod: grace})
	if err != nil {
		t.Fatalf("NewTimerWithConfig: %v", err)
	}
	t.Cleanup(timer.Reset)
	return timer
}

func TestTimerInitialState(t *testing.T) {
	timer := NewTimer()

	if timer.State() != StateNormal {
		t.Errorf("State() = %v, want StateNormal", timer.State())
	}
	if timer.IsFailsafe() {
		t.Error("IsFailsafe() = true, want false")
	}
	if timer.Duration() != DefaultDuration {
		t.Errorf("Duration() = %v, want %v", timer.Duration(), DefaultDuration)
	}
	if timer.GracePeriod() != 0 {
		t.Errorf("GracePeriod() = %v, want 0", timer.GracePeriod())
	}
	if timer.RemainingTime() != 0 {
		t.Errorf("RemainingTime() = %v, want 0", timer.RemainingTime())
	}
}

func TestTimerSetDuration(t *testing.T) {
	timer := NewTimer()

	tests := []struct {
		name    string
		dur     time.Duration
		wantErr bool
	}{
		{"Zero", 0, true},
		{"MinValid", MinDuration, false},
		{"Normal", time.Minute, false},
		{"MaxValid", MaxDuration, false},
		{"TooLong", 25 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := timer.SetDuration(tt.dur)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetDuration(%v) error = %v, wantErr %v", tt.dur, err, tt.wantErr)
			}
		})
	}
}

func TestTimerWithConfig(t *testing.T) {
	if _, err := NewTimerWithConfig(Config{Duration: 48 * time.Hour}); err != ErrInvalidDuration {
		t.Errorf("err = %v, want ErrInvalidDuration", err)
	}
	if _, err := NewTimerWithConfig(Config{GracePeriod: -time.Second}); err != ErrInvalidGrace {
		t.Errorf("err = %v, want ErrInvalidGrace", err)
	}

	timer, err := NewTimerWithConfig(Config{GracePeriod: time.Second})
	if err != nil {
		t.Fatalf("NewTimerWithConfig: %v", err)
	}
	if timer.Duration() != DefaultDuration {
		t.Errorf("Duration() = %v, want %v", timer.Duration(), DefaultDuration)
	}
	if timer.GracePeriod() != time.Second {
		t.Errorf("GracePeriod() = %v, want 1s", timer.GracePeriod())
	}
}

func TestTimerStartStop(t *testing.T) {
	timer := newTimer(t, time.Hour, 0)

	timer.Start()
	if timer.State() != StateTimerRunning {
		t.Errorf("State() = %v, want StateTimerRunning", timer.State())
	}
	if r := timer.RemainingTime(); r <= 0 || r > time.Hour {
		t.Errorf("RemainingTime() = %v, want within (0, 1h]", r)
	}

	timer.Stop()
	if timer.State() != StateNormal {
		t.Errorf("State() = %v, want StateNormal", timer.State())
	}
}

func TestTimerFailsafeTriggered(t *testing.T) {
	timer := newTimer(t, 10*time.Millisecond, 0)

	timer.Start()
	waitState(t, timer, StateFailsafe)
	if !timer.IsFailsafe() {
		t.Error("IsFailsafe() = false, want true")
	}
	if !timer.State().Active() {
		t.Error("FAILSAFE should be active")
	}

	timer.Stop()
	if timer.State() != StateNormal {
		t.Errorf("State() = %v, want StateNormal without a grace period", timer.State())
	}
}

func TestTimerGracePeriod(t *testing.T) {
	timer := newTimer(t, 5*time.Millisecond, 20*time.Millisecond)

	timer.Start()
	waitState(t, timer, StateFailsafe)

	timer.Stop()
	if timer.State() != StateGracePeriod {
		t.Fatalf("State() = %v, want StateGracePeriod", timer.State())
	}
	if !timer.State().Active() {
		t.Error("GRACE_PERIOD should be active")
	}
	waitState(t, timer, StateNormal)
}

func TestTimerFaultDuringGrace(t *testing.T) {
	timer := newTimer(t, 5*time.Millisecond, time.Hour)

	timer.Start()
	waitState(t, timer, StateFailsafe)
	timer.Stop()

	timer.Start()
	if timer.State() != StateFailsafe {
		t.Errorf("State() = %v, want StateFailsafe at once", timer.State())
	}
}

func TestTimerStaleExpiry(t *testing.T) {
	timer := newTimer(t, 20*time.Millisecond, 0)

	timer.Start()
	time.Sleep(15 * time.Millisecond)
	timer.Stop()
	timer.Start()

	// The first timer would have fired by now.
	time.Sleep(10 * time.Millisecond)
	if timer.State() != StateTimerRunning {
		t.Errorf("State() = %v, want StateTimerRunning", timer.State())
	}
	waitState(t, timer, StateFailsafe)
}

func TestTimerReset(t *testing.T) {
	timer := newTimer(t, 5*time.Millisecond, time.Hour)

	timer.Start()
	waitState(t, timer, StateFailsafe)
	timer.Stop()
	timer.Reset()

	if timer.State() != StateNormal {
		t.Errorf("State() = %v, want StateNormal", timer.State())
	}
}

func TestTimerStateChangeCallback(t *testing.T) {
	timer := newTimer(t, 5*time.Millisecond, 5*time.Millisecond)

	var mu sync.Mutex
	var changes [][2]State
	timer.OnStateChange(func(oldState, newState State) {
		// The timer lock is not held here.
		_ = timer.State()
		mu.Lock()
		changes = append(changes, [2]State{oldState, newState})
		mu.Unlock()
	})

	timer.Start()
	waitState(t, timer, StateFailsafe)
	timer.Stop()
	waitState(t, timer, StateNormal)

	want := [][2]State{
		{StateNormal, StateTimerRunning},
		{StateTimerRunning, StateFailsafe},
		{StateFailsafe, StateGracePeriod},
		{StateGracePeriod, StateNormal},
	}
	mu.Lock()
	defer mu.Unlock()
	if len(changes) != len(want) {
		t.Fatalf("got %d changes %v, want %v", len(changes), changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, changes[i], want[i])
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateNormal, "NORMAL"},
		{StateTimerRunning, "TIMER_RUNNING"},
		{StateFailsafe, "FAILSAFE"},
		{StateGracePeriod, "GRACE_PERIOD"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestTimerIdempotent(t *testing.T) {
	timer := newTimer(t, time.Hour, 0)

	calls := 0
	timer.OnStateChange(func(State, State) { calls++ })

	timer.Stop()
	timer.Start()
	timer.Start()
	timer.Stop()
	timer.Stop()

	if calls != 2 {
		t.Errorf("callback called %d times, want 2", calls)
	}
}
