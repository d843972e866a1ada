package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/mash-logic/pkg/signal"
)

type stubDevice struct {
	Base
	out *signal.StateSource[int]
}

func newStub() *stubDevice {
	return &stubDevice{out: signal.NewStateSource[int]()}
}

func (d *stubDevice) Class() string                  { return "test/stub" }
func (d *stubDevice) Signals() signal.Map            { return signal.Map{0: d.out} }
func (d *stubDevice) TargetsChanged()                {}
func (d *stubDevice) Run(ctx context.Context) Exited { return Idle(ctx) }

func TestSetAddAndLookup(t *testing.T) {
	s := NewSet()

	a, err := s.Add("a", newStub())
	require.NoError(t, err)
	b, err := s.Add("b", newStub())
	require.NoError(t, err)

	assert.Equal(t, ID(0), a)
	assert.Equal(t, ID(1), b)
	assert.Equal(t, 2, s.Len())

	e, err := s.Lookup("b")
	require.NoError(t, err)
	assert.Equal(t, b, e.ID)
	assert.Equal(t, "b (test/stub)", e.String())

	_, err = s.Lookup("missing")
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	assert.Equal(t, "a", s.Name(a))
	assert.Equal(t, "#7", s.Name(7))
}

func TestSetRejectsBadNames(t *testing.T) {
	s := NewSet()

	_, err := s.Add("", newStub())
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = s.Add("a/b", newStub())
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = s.Add("a b", newStub())
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.Add("x", newStub())
	require.NoError(t, err)
	_, err = s.Add("x", newStub())
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestBaseNotifySources(t *testing.T) {
	d := newStub()

	d.NotifySources(d.out.Set(1))
	assert.True(t, d.SourcesChanged().Poll())

	d.NotifySources(d.out.Set(1))
	assert.False(t, d.SourcesChanged().Poll(), "unchanged Set must not arm the wake")
}

func TestIdleReturnsOnCancel(t *testing.T) {
	d := newStub()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan Exited)
	go func() { done <- d.Run(ctx) }()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestDispatch(t *testing.T) {
	resp := Dispatch(context.Background(), newStub(), Request{Method: "set"})
	assert.Equal(t, StatusUnsupported, resp.Status)
	assert.Equal(t, "UNSUPPORTED", resp.Status.String())
}
