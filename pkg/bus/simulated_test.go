package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/mash-protocol/mash-logic/pkg/lease"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedReadWrite(t *testing.T) {
	sim := NewSimulated(BoardSpec{Address: 0x10, Inputs: 4, Outputs: 2})
	ctx := context.Background()

	sess, err := sim.Open(ctx)
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, sim.SetInputs(0x10, []bool{true, false, true, false}))
	in, err := sess.ReadInputs(ctx, 0x10)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, false}, in)

	require.NoError(t, sess.WriteOutputs(ctx, 0x10, []bool{false, true}))
	out, err := sim.Outputs(0x10)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, out)

	assert.Equal(t, uint64(2), sim.Transactions())
}

func TestSimulatedErrors(t *testing.T) {
	sim := NewSimulated(BoardSpec{Address: 1, Inputs: 1, Outputs: 1})
	ctx := context.Background()

	sess, err := sim.Open(ctx)
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.ReadInputs(ctx, 2)
	assert.ErrorIs(t, err, ErrNoBoard)

	err = sess.WriteOutputs(ctx, 1, []bool{true, true})
	assert.ErrorIs(t, err, ErrChannels)

	assert.ErrorIs(t, sim.SetInputs(1, nil), ErrChannels)
	assert.ErrorIs(t, sim.SetInputs(9, []bool{true}), ErrNoBoard)

	boom := errors.New("crc error")
	sim.FailNext(1, 2, boom)
	_, err = sess.ReadInputs(ctx, 1)
	assert.ErrorIs(t, err, boom)
	_, err = sess.ReadInputs(ctx, 1)
	assert.ErrorIs(t, err, boom)
	_, err = sess.ReadInputs(ctx, 1)
	assert.NoError(t, err)
}

func TestSimulatedDrop(t *testing.T) {
	sim := NewSimulated(BoardSpec{Address: 1, Inputs: 1})
	ctx := context.Background()

	sess, err := sim.Open(ctx)
	require.NoError(t, err)

	sim.Drop()
	_, err = sess.ReadInputs(ctx, 1)
	assert.ErrorIs(t, err, ErrLinkLost)

	require.NoError(t, sess.Close())
	_, err = sess.ReadInputs(ctx, 1)
	assert.ErrorIs(t, err, ErrSessionDone)

	// A fresh session sees the new line generation.
	sess2, err := sim.Open(ctx)
	require.NoError(t, err)
	defer sess2.Close()
	_, err = sess2.ReadInputs(ctx, 1)
	assert.NoError(t, err)
}

func TestSimulatedSecondOpenPanics(t *testing.T) {
	sim := NewSimulated()
	sess, err := sim.Open(context.Background())
	require.NoError(t, err)
	defer sess.Close()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		var conflict *lease.ConflictError
		assert.True(t, errors.As(err, &conflict))
	}()
	_, _ = sim.Open(context.Background())
}

func TestSimulatedOpenCancelled(t *testing.T) {
	sim := NewSimulated()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sim.Open(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "0x0a", Address(10).String())
}

func TestSimulatedPeek(t *testing.T) {
	sim := NewSimulated(
		BoardSpec{Address: 3, Inputs: 2},
		BoardSpec{Address: 1, Outputs: 1},
	)
	assert.Equal(t, []Address{1, 3}, sim.Addresses())

	require.NoError(t, sim.SetInputs(3, []bool{false, true}))
	in, err := sim.Inputs(3)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, in)

	// Returned slices are copies.
	in[0] = true
	in, _ = sim.Inputs(3)
	assert.False(t, in[0])

	_, err = sim.Inputs(7)
	assert.ErrorIs(t, err, ErrNoBoard)
	assert.Zero(t, sim.Transactions())
}
