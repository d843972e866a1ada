package topology

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

type fakeDevice struct {
	device.Base
	signals signal.Map
}

func (d *fakeDevice) Class() string                         { return "test/fake" }
func (d *fakeDevice) Signals() signal.Map                   { return d.signals }
func (d *fakeDevice) TargetsChanged()                       {}
func (d *fakeDevice) Run(ctx context.Context) device.Exited { return device.Idle(ctx) }

func ref(dev string, id signal.ID) Ref {
	return Ref{Device: dev, Signal: id}
}

func newFixture(t *testing.T, devices map[string]signal.Map, order ...string) *Endpoints {
	t.Helper()
	set := device.NewSet()
	for _, name := range order {
		_, err := set.Add(name, &fakeDevice{signals: devices[name]})
		require.NoError(t, err)
	}
	return CollectEndpoints(set)
}

func TestResolveBuildsRunningGraph(t *testing.T) {
	eps := newFixture(t, map[string]signal.Map{
		"src": {
			0: signal.NewStateSource[bool](),
			1: signal.NewEventSource[string](),
		},
		"a": {0: signal.NewStateTargetLast[bool](), 1: signal.NewEventTargetQueued[string]()},
		"b": {0: signal.NewStateTargetQueued[bool](), 1: signal.NewEventTargetLast[string]()},
	}, "src", "a", "b")

	req := NewRequested()
	req.Connect(ref("src", 0), ref("b", 0), ref("a", 0))
	req.Connect(ref("src", 1), ref("a", 1), ref("b", 1))

	running, err := Resolve(req, eps)
	require.NoError(t, err)
	assert.Equal(t, 4, running.Len())

	state := running.StateEdges()
	require.Len(t, state, 1)
	assert.Equal(t, Key{Device: 0, Signal: 0}, state[0].Key)
	require.Len(t, state[0].Targets, 2)
	assert.Equal(t, "a", state[0].Targets[0].Ref.Device)
	assert.Equal(t, "b", state[0].Targets[1].Ref.Device)

	event := running.EventEdges()
	require.Len(t, event, 1)
	assert.Len(t, event[0].Targets, 2)

	links := running.DeviceLinks()
	assert.Equal(t, []device.ID{1, 2}, links[0])
}

func TestResolveEventFanIn(t *testing.T) {
	eps := newFixture(t, map[string]signal.Map{
		"x": {0: signal.NewEventSource[int]()},
		"y": {0: signal.NewEventSource[int]()},
		"z": {0: signal.NewEventTargetQueued[int]()},
	}, "x", "y", "z")

	req := NewRequested()
	req.Connect(ref("x", 0), ref("z", 0))
	req.Connect(ref("y", 0), ref("z", 0))

	running, err := Resolve(req, eps)
	require.NoError(t, err)
	assert.Len(t, running.EventEdges(), 2)
}

func TestResolveMissingEndpoint(t *testing.T) {
	eps := newFixture(t, map[string]signal.Map{
		"a": {0: signal.NewStateSource[int]()},
	}, "a")

	req := NewRequested()
	req.Connect(ref("a", 0), ref("ghost", 0), ref("a", 9))
	req.Connect(ref("a", 7), ref("ghost", 0))

	_, err := Resolve(req, eps)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingEndpoint)

	var rerr *ResolveError
	require.True(t, errors.As(err, &rerr))
	missing := rerr.ByKind(FailureMissingEndpoint)
	require.Len(t, missing, 3, "each unresolvable ref is reported once")
	assert.Equal(t, ref("a", 7), missing[0].Endpoint)
	assert.Equal(t, ref("a", 9), missing[1].Endpoint)
	assert.Equal(t, ref("ghost", 0), missing[2].Endpoint)
}

func TestResolveTypeMismatch(t *testing.T) {
	eps := newFixture(t, map[string]signal.Map{
		"s": {
			0: signal.NewStateSource[int](),
			1: signal.NewEventSource[int](),
		},
		"t": {
			0: signal.NewStateTargetLast[float64](),
			1: signal.NewStateTargetLast[int](),
			2: signal.NewStateSource[int](),
		},
	}, "s", "t")

	tests := []struct {
		name string
		from Ref
		to   Ref
	}{
		{"value type", ref("s", 0), ref("t", 0)},
		{"kind", ref("s", 1), ref("t", 1)},
		{"source to source", ref("s", 0), ref("t", 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequested()
			req.Connect(tt.from, tt.to)

			_, err := Resolve(req, eps)
			assert.ErrorIs(t, err, ErrTypeMismatch)
			assert.NotErrorIs(t, err, ErrMissingEndpoint)
		})
	}
}

func TestResolveCardinality(t *testing.T) {
	eps := newFixture(t, map[string]signal.Map{
		"p": {0: signal.NewStateSource[bool]()},
		"q": {0: signal.NewStateSource[bool]()},
		"r": {0: signal.NewStateTargetLast[bool]()},
	}, "p", "q", "r")

	req := NewRequested()
	req.Connect(ref("q", 0), ref("r", 0))
	req.Connect(ref("p", 0), ref("r", 0))

	_, err := Resolve(req, eps)
	assert.ErrorIs(t, err, ErrCardinality)

	var rerr *ResolveError
	require.True(t, errors.As(err, &rerr))
	require.Len(t, rerr.Failures, 1)
	f := rerr.Failures[0]
	assert.Equal(t, ref("r", 0), f.Target)
	assert.Equal(t, []Ref{ref("p", 0), ref("q", 0)}, f.Sources)
	assert.Contains(t, err.Error(), "p/0")
	assert.Contains(t, err.Error(), "q/0")
}

func TestResolveAggregatesAllFailures(t *testing.T) {
	eps := newFixture(t, map[string]signal.Map{
		"p": {0: signal.NewStateSource[bool](), 1: signal.NewStateSource[int]()},
		"q": {0: signal.NewStateSource[bool]()},
		"r": {0: signal.NewStateTargetLast[bool](), 1: signal.NewStateTargetLast[bool]()},
	}, "p", "q", "r")

	req := NewRequested()
	req.Connect(ref("p", 0), ref("r", 0))
	req.Connect(ref("q", 0), ref("r", 0))
	req.Connect(ref("p", 1), ref("r", 1))
	req.Connect(ref("nobody", 3), ref("r", 1))
	req.Connect(ref("p", 0), ref("r", 5))

	_, err := Resolve(req, eps)
	require.Error(t, err)

	var rerr *ResolveError
	require.True(t, errors.As(err, &rerr))
	assert.Len(t, rerr.ByKind(FailureMissingEndpoint), 2)
	assert.Len(t, rerr.ByKind(FailureKindOrTypeMismatch), 1)
	assert.Len(t, rerr.ByKind(FailureCardinalityViolation), 1)
	assert.Len(t, rerr.Failures, 4)
	assert.Contains(t, err.Error(), "4 error(s)")

	assert.ErrorIs(t, err, ErrMissingEndpoint)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.ErrorIs(t, err, ErrCardinality)
}

func TestRequestedMergesDuplicates(t *testing.T) {
	req := NewRequested()
	req.Connect(ref("a", 0), ref("b", 0), ref("b", 0))
	req.Connect(ref("a", 0), ref("c", 0))

	assert.Equal(t, 2, req.Len())
	assert.Equal(t, []Ref{ref("b", 0), ref("c", 0)}, req.Targets(ref("a", 0)))
	assert.Equal(t, map[Ref][]Ref{
		ref("b", 0): {ref("a", 0)},
		ref("c", 0): {ref("a", 0)},
	}, req.Sources())
}

func TestFailureKindString(t *testing.T) {
	assert.Equal(t, "MissingEndpoint", FailureMissingEndpoint.String())
	assert.Equal(t, "KindOrTypeMismatch", FailureKindOrTypeMismatch.String())
	assert.Equal(t, "CardinalityViolation", FailureCardinalityViolation.String())
}

func TestResolveUnresolvedName(t *testing.T) {
	eps := newFixture(t, map[string]signal.Map{
		"a": {0: signal.NewStateSource[bool]()},
		"b": {0: signal.NewStateSource[bool]()},
		"t": {0: signal.NewStateTargetLast[bool]()},
	}, "a", "b", "t")

	bad := Unresolved("a", "output")
	assert.Equal(t, "a/output", bad.String())
	assert.NotEqual(t, ref("a", 0), bad)

	req := NewRequested()
	req.Connect(bad, ref("t", 0))
	req.Connect(ref("a", 0), ref("t", 0))
	req.Connect(ref("b", 0), ref("t", 0))

	_, err := Resolve(req, eps)
	var rerr *ResolveError
	require.ErrorAs(t, err, &rerr)
	require.Len(t, rerr.Failures, 2)

	missing := rerr.ByKind(FailureMissingEndpoint)
	require.Len(t, missing, 1)
	assert.Equal(t, bad, missing[0].Endpoint)
	assert.Contains(t, err.Error(), "MissingEndpoint: a/output")
	require.Len(t, rerr.ByKind(FailureCardinalityViolation), 1)
}

func TestRefCompare(t *testing.T) {
	assert.Negative(t, ref("a", 1).Compare(ref("b", 0)))
	assert.Negative(t, ref("a", 0).Compare(ref("a", 1)))
	assert.Negative(t, ref("a", 0).Compare(Unresolved("a", "x")))
	assert.Zero(t, Unresolved("a", "x").Compare(Unresolved("a", "x")))
	assert.Equal(t, "a/3", ref("a", 3).String())
}
