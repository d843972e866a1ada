package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mash-protocol/mash-logic/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyPort fails the first n opens.
type flakyPort struct {
	Port
	failures atomic.Int32
	opens    atomic.Int32
}

func (p *flakyPort) Open(ctx context.Context) (Session, error) {
	p.opens.Add(1)
	if p.failures.Add(-1) >= 0 {
		return nil, errors.New("port busy")
	}
	return p.Port.Open(ctx)
}

func fastBackoff() retry.Config {
	return retry.Config{
		Initial:    5 * time.Millisecond,
		Max:        20 * time.Millisecond,
		Multiplier: 2,
		Jitter:     -1,
	}
}

func TestLinkOpenAndTransact(t *testing.T) {
	sim := NewSimulated(BoardSpec{Address: 1, Inputs: 2, Outputs: 2})
	l := NewLink(sim, LinkConfig{Backoff: fastBackoff()})
	defer l.Close()

	_, err := l.ReadInputs(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotOpen)

	require.NoError(t, l.Open(context.Background()))
	assert.True(t, l.IsOpen())
	require.NoError(t, l.Open(context.Background()), "Open on open link is a no-op")

	require.NoError(t, sim.SetInputs(1, []bool{true, true}))
	in, err := l.ReadInputs(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, in)

	require.NoError(t, l.WriteOutputs(context.Background(), 1, []bool{true, false}))
	out, _ := sim.Outputs(1)
	assert.Equal(t, []bool{true, false}, out)
}

func TestLinkStateTransitions(t *testing.T) {
	sim := NewSimulated()
	l := NewLink(sim, LinkConfig{Backoff: fastBackoff()})

	var mu sync.Mutex
	var seen []State
	l.OnStateChange(func(_, newState State) {
		mu.Lock()
		seen = append(seen, newState)
		mu.Unlock()
	})

	require.NoError(t, l.Open(context.Background()))
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateOpening, StateOpen, StateClosed}, seen)
	assert.ErrorIs(t, l.Open(context.Background()), ErrLinkClosed)
}

func TestLinkOpenFailure(t *testing.T) {
	port := &flakyPort{Port: NewSimulated()}
	port.failures.Store(1)
	l := NewLink(port, LinkConfig{})
	defer l.Close()

	assert.Error(t, l.Open(context.Background()))
	assert.Equal(t, StateDisconnected, l.State())
	require.NoError(t, l.Open(context.Background()))
	assert.Equal(t, StateOpen, l.State())
}

func TestLinkReopensAfterLoss(t *testing.T) {
	sim := NewSimulated(BoardSpec{Address: 1, Inputs: 1})
	port := &flakyPort{Port: sim}
	l := NewLink(port, LinkConfig{Backoff: fastBackoff()})
	l.Start()
	defer l.Close()

	require.NoError(t, l.Open(context.Background()))

	// The next two reopen attempts fail before the line comes back.
	port.failures.Store(2)
	sim.Drop()

	_, err := l.ReadInputs(context.Background(), 1)
	require.ErrorIs(t, err, ErrLinkLost)

	require.Eventually(t, l.IsOpen, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, port.opens.Load(), int32(4))
	assert.Equal(t, 0, l.Attempts(), "backoff resets after reopen")

	_, err = l.ReadInputs(context.Background(), 1)
	assert.NoError(t, err)
}

func TestLinkCloseStopsReopen(t *testing.T) {
	port := &flakyPort{Port: NewSimulated()}
	l := NewLink(port, LinkConfig{Backoff: fastBackoff()})
	l.Start()

	require.NoError(t, l.Open(context.Background()))
	port.failures.Store(1 << 20)
	l.NotifyLost()
	assert.Equal(t, StateReopening, l.State())

	require.Eventually(t, func() bool { return l.Attempts() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, l.Close())
	assert.Equal(t, StateClosed, l.State())

	_, err := l.ReadInputs(context.Background(), 0)
	assert.ErrorIs(t, err, ErrLinkClosed)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "DISCONNECTED"},
		{StateOpening, "OPENING"},
		{StateOpen, "OPEN"},
		{StateReopening, "REOPENING"},
		{StateClosed, "CLOSED"},
		{State(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}
