package logic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/duration"
)

const tick = 30 * time.Millisecond

func newTestTimer(t *testing.T, mode TimerMode, channels int) *Timer {
	t.Helper()
	tm, err := NewTimer(mode, tick, channels)
	require.NoError(t, err)
	t.Cleanup(tm.timers.CancelAll)
	return tm
}

func (t *Timer) feed(ch int, v bool) {
	t.in[ch].Set(v)
	t.TargetsChanged()
}

func TestTimerStartsLow(t *testing.T) {
	tm := newTestTimer(t, TimerPulse, 2)
	assert.Equal(t, []bool{false, false}, tm.Outputs())

	pending := tm.out.TakePending()
	require.Len(t, pending, 2)
	assert.True(t, pending[0].Changed, "initial value is delivered")

	names := tm.SignalNames()
	assert.Equal(t, "in1", names[1])
	assert.Equal(t, "out0", names[2])
	assert.Equal(t, ClassTimer, tm.Class())
}

func TestTimerPulse(t *testing.T) {
	tm := newTestTimer(t, TimerPulse, 1)

	tm.feed(0, true)
	assert.Equal(t, []bool{true}, tm.Outputs())
	assert.True(t, tm.SourcesChanged().Poll())

	// Holding the input does not extend the pulse.
	tm.feed(0, true)
	require.Eventually(t, func() bool { return !tm.Outputs()[0] }, time.Second, time.Millisecond)
	assert.True(t, tm.SourcesChanged().Poll())
	assert.Zero(t, tm.timers.Count())
}

func TestTimerPulseRetrigger(t *testing.T) {
	tm := newTestTimer(t, TimerPulse, 1)

	tm.feed(0, true)
	tm.feed(0, false)
	time.Sleep(tick / 2)
	tm.feed(0, true)
	started := time.Now()

	require.Eventually(t, func() bool { return !tm.Outputs()[0] }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(started), tick-5*time.Millisecond, "second edge restarts the pulse")
}

func TestTimerOnDelay(t *testing.T) {
	tm := newTestTimer(t, TimerOnDelay, 1)

	tm.feed(0, true)
	assert.False(t, tm.Outputs()[0], "output waits for the delay")
	require.Eventually(t, func() bool { return tm.Outputs()[0] }, time.Second, time.Millisecond)

	tm.feed(0, false)
	assert.False(t, tm.Outputs()[0], "falling input drops the output at once")
}

func TestTimerOnDelayCancelled(t *testing.T) {
	tm := newTestTimer(t, TimerOnDelay, 1)

	tm.feed(0, true)
	tm.feed(0, false)
	time.Sleep(3 * tick)
	assert.False(t, tm.Outputs()[0], "short input never raises the output")
	assert.Zero(t, tm.timers.Count())
}

func TestTimerOffDelay(t *testing.T) {
	tm := newTestTimer(t, TimerOffDelay, 2)

	tm.feed(1, true)
	assert.Equal(t, []bool{false, true}, tm.Outputs())

	tm.feed(1, false)
	assert.True(t, tm.Outputs()[1], "output holds after the input falls")
	require.Eventually(t, func() bool { return !tm.Outputs()[1] }, time.Second, time.Millisecond)

	// Rising again during the hold keeps the output up.
	tm.feed(1, true)
	tm.feed(1, false)
	tm.feed(1, true)
	time.Sleep(3 * tick)
	assert.True(t, tm.Outputs()[1])
	assert.False(t, tm.Outputs()[0], "channels are independent")
}

func TestTimerStatus(t *testing.T) {
	tm, err := NewTimer(TimerPulse, time.Hour, 2)
	require.NoError(t, err)
	defer tm.timers.CancelAll()

	tm.feed(1, true)
	resp := device.Dispatch(context.Background(), tm, device.Request{Method: "status"})
	require.Equal(t, device.StatusSuccess, resp.Status)
	st := resp.Payload.(TimerStatus)
	assert.Equal(t, TimerPulse, st.Mode)
	assert.Equal(t, []bool{false, true}, st.Outputs)
	require.Contains(t, st.Remaining, "out1")
	assert.Greater(t, st.Remaining["out1"], 59*time.Minute)

	resp = device.Dispatch(context.Background(), tm, device.Request{Method: "fire"})
	assert.Equal(t, device.StatusInvalidMethod, resp.Status)
}

func TestTimerRunCancelsTimers(t *testing.T) {
	tm, err := NewTimer(TimerPulse, time.Hour, 1)
	require.NoError(t, err)
	tm.feed(0, true)
	require.Equal(t, 1, tm.timers.Count())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tm.Run(ctx)
	assert.Zero(t, tm.timers.Count())
}

func TestNewTimerErrors(t *testing.T) {
	_, err := NewTimer(TimerPulse, 0, 1)
	assert.ErrorIs(t, err, duration.ErrInvalidDuration)

	_, err = NewTimer(TimerPulse, time.Second, 0)
	assert.Error(t, err)

	_, err = NewTimer("astable", time.Second, 1)
	assert.Error(t, err)
}

func TestParseTimerMode(t *testing.T) {
	m, err := ParseTimerMode("")
	require.NoError(t, err)
	assert.Equal(t, TimerPulse, m)

	m, err = ParseTimerMode("off-delay")
	require.NoError(t, err)
	assert.Equal(t, TimerOffDelay, m)

	_, err = ParseTimerMode("toggle")
	assert.Error(t, err)
}
