package topology

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// StateTarget is a resolved state target.
type StateTarget struct {
	Key    Key
	Ref    Ref
	Handle signal.StateTargetHandle
}

// StateEdge is a state source with every target it feeds.
type StateEdge struct {
	Key     Key
	Ref     Ref
	Source  signal.StateSourceHandle
	Targets []StateTarget
}

// EventTarget is a resolved event target.
type EventTarget struct {
	Key    Key
	Ref    Ref
	Handle signal.EventTargetHandle
}

// EventEdge is an event source with every target it feeds.
type EventEdge struct {
	Key     Key
	Ref     Ref
	Source  signal.EventSourceHandle
	Targets []EventTarget
}

// Running is the resolved, validated connection graph.
type Running struct {
	state []StateEdge
	event []EventEdge
}

// StateEdges returns state adjacency ordered by source key; targets are
// ordered by key.
func (r *Running) StateEdges() []StateEdge {
	return slices.Clone(r.state)
}

// EventEdges returns event adjacency ordered by source key; targets are
// ordered by key.
func (r *Running) EventEdges() []EventEdge {
	return slices.Clone(r.event)
}

// DeviceLinks returns, for every device with outgoing edges, the set of
// devices it feeds.
func (r *Running) DeviceLinks() map[device.ID][]device.ID {
	links := make(map[device.ID]mapset.Set[device.ID])
	add := func(from, to device.ID) {
		set, ok := links[from]
		if !ok {
			set = mapset.NewThreadUnsafeSet[device.ID]()
			links[from] = set
		}
		set.Add(to)
	}
	for _, e := range r.state {
		for _, t := range e.Targets {
			add(e.Key.Device, t.Key.Device)
		}
	}
	for _, e := range r.event {
		for _, t := range e.Targets {
			add(e.Key.Device, t.Key.Device)
		}
	}

	out := make(map[device.ID][]device.ID, len(links))
	for from, set := range links {
		to := set.ToSlice()
		slices.Sort(to)
		out[from] = to
	}
	return out
}

// Len returns the number of resolved edges.
func (r *Running) Len() int {
	n := 0
	for _, e := range r.state {
		n += len(e.Targets)
	}
	for _, e := range r.event {
		n += len(e.Targets)
	}
	return n
}

type resolvedEdge struct {
	from Endpoint
	to   Endpoint
}

// Resolve validates every requested edge against the live endpoints and
// builds the Running graph. All problems are collected and returned together
// as a *ResolveError.
func Resolve(req *Requested, endpoints *Endpoints) (*Running, error) {
	edges := req.Edges()
	var failures []Failure

	// Pass 1: endpoint existence.
	missing := mapset.NewThreadUnsafeSet[Ref]()
	var resolved []resolvedEdge
	for _, e := range edges {
		from, okFrom := endpoints.Lookup(e.From)
		to, okTo := endpoints.Lookup(e.To)
		if !okFrom {
			missing.Add(e.From)
		}
		if !okTo {
			missing.Add(e.To)
		}
		if okFrom && okTo {
			resolved = append(resolved, resolvedEdge{from: from, to: to})
		}
	}
	missingRefs := missing.ToSlice()
	slices.SortFunc(missingRefs, Ref.Compare)
	for _, ref := range missingRefs {
		failures = append(failures, Failure{Kind: FailureMissingEndpoint, Endpoint: ref})
	}

	// Pass 2: roles, kinds and type tags.
	var valid []resolvedEdge
	for _, e := range resolved {
		srcRole, dstRole := e.from.Handle.Role(), e.to.Handle.Role()
		srcType, dstType := e.from.Handle.Type(), e.to.Handle.Type()
		if !srcRole.Accepts(dstRole) || srcType != dstType {
			failures = append(failures, Failure{
				Kind:       FailureKindOrTypeMismatch,
				Source:     e.from.Ref,
				Target:     e.to.Ref,
				SourceRole: srcRole,
				SourceType: srcType,
				TargetRole: dstRole,
				TargetType: dstType,
			})
			continue
		}
		valid = append(valid, e)
	}

	// Pass 3: state targets accept at most one source.
	stateSources := make(map[Ref][]Ref)
	for _, e := range valid {
		if e.to.Handle.Role() == signal.RoleStateTarget {
			stateSources[e.to.Ref] = append(stateSources[e.to.Ref], e.from.Ref)
		}
	}
	var contested []Ref
	for target, sources := range stateSources {
		if len(sources) > 1 {
			contested = append(contested, target)
		}
	}
	slices.SortFunc(contested, Ref.Compare)
	for _, target := range contested {
		sources := slices.Clone(stateSources[target])
		slices.SortFunc(sources, Ref.Compare)
		failures = append(failures, Failure{
			Kind:    FailureCardinalityViolation,
			Target:  target,
			Sources: sources,
		})
	}

	if len(failures) > 0 {
		return nil, &ResolveError{Failures: failures}
	}
	return build(valid), nil
}

func build(edges []resolvedEdge) *Running {
	stateIdx := make(map[Key]int)
	eventIdx := make(map[Key]int)
	r := &Running{}

	for _, e := range edges {
		switch src := e.from.Handle.(type) {
		case signal.StateSourceHandle:
			i, ok := stateIdx[e.from.Key]
			if !ok {
				i = len(r.state)
				stateIdx[e.from.Key] = i
				r.state = append(r.state, StateEdge{Key: e.from.Key, Ref: e.from.Ref, Source: src})
			}
			r.state[i].Targets = append(r.state[i].Targets, StateTarget{
				Key:    e.to.Key,
				Ref:    e.to.Ref,
				Handle: e.to.Handle.(signal.StateTargetHandle),
			})
		case signal.EventSourceHandle:
			i, ok := eventIdx[e.from.Key]
			if !ok {
				i = len(r.event)
				eventIdx[e.from.Key] = i
				r.event = append(r.event, EventEdge{Key: e.from.Key, Ref: e.from.Ref, Source: src})
			}
			r.event[i].Targets = append(r.event[i].Targets, EventTarget{
				Key:    e.to.Key,
				Ref:    e.to.Ref,
				Handle: e.to.Handle.(signal.EventTargetHandle),
			})
		}
	}

	slices.SortFunc(r.state, func(a, b StateEdge) int { return a.Key.Compare(b.Key) })
	slices.SortFunc(r.event, func(a, b EventEdge) int { return a.Key.Compare(b.Key) })
	for i := range r.state {
		slices.SortFunc(r.state[i].Targets, func(a, b StateTarget) int { return a.Key.Compare(b.Key) })
	}
	for i := range r.event {
		slices.SortFunc(r.event[i].Targets, func(a, b EventTarget) int { return a.Key.Compare(b.Key) })
	}
	return r
}
