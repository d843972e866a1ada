package exchange

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/lease"
	"github.com/mash-protocol/mash-logic/pkg/log"
	"github.com/mash-protocol/mash-logic/pkg/metrics"
	"github.com/mash-protocol/mash-logic/pkg/signal"
	"github.com/mash-protocol/mash-logic/pkg/topology"
	"github.com/mash-protocol/mash-logic/pkg/wake"
)

// DefaultMaxRounds is the round limit used when Config.MaxRounds is zero.
const DefaultMaxRounds = 64

// Config configures an Exchanger.
type Config struct {
	// MaxRounds bounds the rounds of one settle. Zero means DefaultMaxRounds.
	MaxRounds int

	// RunID tags trace events. Empty means a fresh UUID.
	RunID string

	// Logger is used for operational logging.
	Logger *slog.Logger

	// Tracer receives exchange trace events. Nil disables tracing.
	Tracer log.Logger

	// Metrics records exchange metrics. Nil disables metrics.
	Metrics *metrics.Exchange
}

// Stats is a snapshot of exchanger counters.
type Stats struct {
	Settles     uint64
	Rounds      uint64
	Pushes      uint64
	Invocations uint64
}

// Exchanger moves values along a Running graph.
type Exchanger struct {
	cfg      Config
	nodes    []*node
	notifier *wake.Notifier
	state    *lease.Lease[*settleState]

	settles     atomic.Uint64
	rounds      atomic.Uint64
	pushes      atomic.Uint64
	invocations atomic.Uint64
}

// node is one device in visitation order with its precomputed fan-out.
type node struct {
	entry device.Entry
	wake  *wake.Signal
	state []stateOut
	event []eventOut
}

type stateOut struct {
	ref     string
	source  signal.StateSourceHandle
	targets []stateIn
}

type stateIn struct {
	ref    string
	node   int
	handle signal.StateTargetHandle
}

type eventOut struct {
	ref     string
	source  signal.EventSourceHandle
	targets []eventIn
}

type eventIn struct {
	ref    string
	node   int
	handle signal.EventTargetHandle
}

// settleState is the mutable state only one settle may touch at a time.
type settleState struct {
	seq         uint64
	initialDone bool
}

// New builds an Exchanger for the devices in set connected by running. It
// registers the exchanger's notifier on every device's SourcesChanged wake.
func New(set *device.Set, running *topology.Running, cfg Config) *Exchanger {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = log.NoopLogger{}
	}

	e := &Exchanger{
		cfg:      cfg,
		notifier: wake.NewNotifier(),
		state:    lease.New("exchange", &settleState{}),
	}

	order := visitOrder(set.Len(), running.DeviceLinks())
	index := make(map[device.ID]int, len(order))
	for i, id := range order {
		entry, _ := set.Get(id)
		index[id] = i
		e.nodes = append(e.nodes, &node{entry: entry, wake: entry.Device.SourcesChanged()})
	}

	stateTargets := make(map[topology.Key][]stateIn)
	for _, edge := range running.StateEdges() {
		for _, t := range edge.Targets {
			stateTargets[edge.Key] = append(stateTargets[edge.Key], stateIn{
				ref:    t.Ref.String(),
				node:   index[t.Key.Device],
				handle: t.Handle,
			})
		}
	}
	eventTargets := make(map[topology.Key][]eventIn)
	for _, edge := range running.EventEdges() {
		for _, t := range edge.Targets {
			eventTargets[edge.Key] = append(eventTargets[edge.Key], eventIn{
				ref:    t.Ref.String(),
				node:   index[t.Key.Device],
				handle: t.Handle,
			})
		}
	}

	// Every source is drained, connected or not, so unconnected event
	// queues stay bounded.
	for _, n := range e.nodes {
		signals := n.entry.Device.Signals()
		for _, id := range signals.IDs() {
			key := topology.Key{Device: n.entry.ID, Signal: id}
			ref := topology.Ref{Device: n.entry.Name, Signal: id}.String()
			switch h := signals[id].(type) {
			case signal.StateSourceHandle:
				n.state = append(n.state, stateOut{ref: ref, source: h, targets: stateTargets[key]})
			case signal.EventSourceHandle:
				n.event = append(n.event, eventOut{ref: ref, source: h, targets: eventTargets[key]})
			}
		}
		n.wake.Register(e.notifier)
	}

	return e
}

// RunID returns the run ID stamped on trace events.
func (e *Exchanger) RunID() string {
	return e.cfg.RunID
}

// Order returns the devices in visitation order.
func (e *Exchanger) Order() []device.Entry {
	out := make([]device.Entry, len(e.nodes))
	for i, n := range e.nodes {
		out[i] = n.entry
	}
	return out
}

// Stats returns a snapshot of the exchanger counters. It is safe to call
// concurrently with Run.
func (e *Exchanger) Stats() Stats {
	return Stats{
		Settles:     e.settles.Load(),
		Rounds:      e.rounds.Load(),
		Pushes:      e.pushes.Load(),
		Invocations: e.invocations.Load(),
	}
}

// Settle runs one settle synchronously. The first settle of an Exchanger
// treats every device as armed so initial source values propagate.
// Settle panics with a *lease.ConflictError if Run or another Settle is in
// progress.
func (e *Exchanger) Settle() error {
	g := e.state.Acquire("Settle")
	defer g.Release()
	return e.settle(g.Value())
}

// Run performs the initial settle and then settles after every wake until
// ctx is done. A settle error is fatal and returned.
func (e *Exchanger) Run(ctx context.Context) (device.Exited, error) {
	g := e.state.Acquire("Run")
	defer g.Release()
	st := g.Value()

	e.cfg.Logger.Info("exchange running",
		"run_id", e.cfg.RunID,
		"devices", len(e.nodes),
		"max_rounds", e.cfg.MaxRounds)

	if !st.initialDone {
		if err := e.settle(st); err != nil {
			return device.Exited{}, err
		}
	}

	for {
		select {
		case <-ctx.Done():
			e.cfg.Logger.Info("exchange stopped", "settles", e.settles.Load())
			return device.Exited{}, nil
		case <-e.notifier.C():
			if err := e.settle(st); err != nil {
				return device.Exited{}, err
			}
		}
	}
}

func (e *Exchanger) settle(st *settleState) error {
	start := time.Now()
	initial := !st.initialDone
	armed := e.pollArmed(initial)
	if len(armed) == 0 && !initial {
		// Coalesced notification for wakes an earlier settle already drained.
		return nil
	}
	st.initialDone = true
	st.seq++

	var pushes, invocations int
	rounds := 0
	for len(armed) > 0 {
		if rounds == e.cfg.MaxRounds {
			return e.roundLimit(st.seq, armed)
		}
		rounds++

		changed, n := e.propagate(st.seq, rounds, armed)
		pushes += n
		invocations += e.invoke(st.seq, rounds, changed)

		armed = e.pollArmed(false)
	}

	elapsed := time.Since(start)
	e.settles.Add(1)
	e.rounds.Add(uint64(rounds))
	e.cfg.Metrics.ObserveSettle(rounds, elapsed)
	e.trace(log.Event{
		Settle:   st.seq,
		Category: log.CategorySettle,
		SettleInfo: &log.SettleEvent{
			Rounds:      rounds,
			Pushes:      pushes,
			Invocations: invocations,
			Duration:    elapsed,
			Initial:     initial,
		},
	})
	return nil
}

// pollArmed clears and collects the armed devices in visitation order.
func (e *Exchanger) pollArmed(all bool) []int {
	var armed []int
	for i, n := range e.nodes {
		if n.wake.Poll() || all {
			armed = append(armed, i)
		}
	}
	return armed
}

// propagate drains the armed devices' sources into their targets. It returns
// the number of changed targets per receiving node and the push count.
func (e *Exchanger) propagate(seq uint64, round int, armed []int) (map[int]int, int) {
	changed := make(map[int]int)
	pushes := 0

	for _, idx := range armed {
		n := e.nodes[idx]
		for _, out := range n.state {
			value, ok := out.source.TakePendingAny()
			if !ok {
				continue
			}
			for _, in := range out.targets {
				ch := in.handle.SetAny(value)
				if ch {
					changed[in.node]++
				}
				pushes++
				e.cfg.Metrics.ObservePush(signal.KindState.String(), ch)
				e.trace(log.Event{
					Settle:   seq,
					Round:    round,
					Category: log.CategoryPush,
					Push: &log.PushEvent{
						Kind:    log.SignalKindState,
						Source:  out.ref,
						Target:  in.ref,
						Count:   1,
						Changed: ch,
						Value:   value,
					},
				})
			}
		}
		for _, out := range n.event {
			batch, count := out.source.TakePendingAny()
			if count == 0 {
				continue
			}
			for _, in := range out.targets {
				ch := in.handle.PushAny(batch)
				if ch {
					changed[in.node]++
				}
				pushes++
				e.cfg.Metrics.ObservePush(signal.KindEvent.String(), ch)
				e.trace(log.Event{
					Settle:   seq,
					Round:    round,
					Category: log.CategoryPush,
					Push: &log.PushEvent{
						Kind:    log.SignalKindEvent,
						Source:  out.ref,
						Target:  in.ref,
						Count:   count,
						Changed: ch,
					},
				})
			}
		}
	}

	e.pushes.Add(uint64(pushes))
	return changed, pushes
}

// invoke calls TargetsChanged on every changed node in visitation order.
func (e *Exchanger) invoke(seq uint64, round int, changed map[int]int) int {
	if len(changed) == 0 {
		return 0
	}
	touched := mapset.NewThreadUnsafeSetFromMapKeys(changed)

	calls := 0
	for idx, n := range e.nodes {
		if !touched.Contains(idx) {
			continue
		}
		n.entry.Device.TargetsChanged()
		calls++
		e.cfg.Metrics.ObserveInvoke(n.entry.Device.Class())
		e.trace(log.Event{
			Settle:   seq,
			Round:    round,
			Category: log.CategoryInvoke,
			Device:   n.entry.Name,
			Invoke: &log.InvokeEvent{
				Class:   n.entry.Device.Class(),
				Targets: changed[idx],
			},
		})
	}

	e.invocations.Add(uint64(calls))
	return calls
}

func (e *Exchanger) roundLimit(seq uint64, armed []int) error {
	names := make([]string, len(armed))
	for i, idx := range armed {
		names[i] = e.nodes[idx].entry.Name
	}
	err := &RoundLimitError{Settle: seq, Rounds: e.cfg.MaxRounds, Armed: names}

	e.cfg.Metrics.ObserveRoundLimit()
	e.cfg.Logger.Error("settle aborted", "error", err)
	e.trace(log.Event{
		Settle:   seq,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: "settle",
			Armed:   names,
		},
	})
	return err
}

func (e *Exchanger) trace(event log.Event) {
	event.Timestamp = time.Now()
	event.RunID = e.cfg.RunID
	e.cfg.Tracer.Log(event)
}
