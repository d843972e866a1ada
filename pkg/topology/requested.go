package topology

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Edge is one requested connection.
type Edge struct {
	From Ref
	To   Ref
}

// Requested is the declared, unresolved connection graph.
type Requested struct {
	targets map[Ref]mapset.Set[Ref]
}

// NewRequested creates an empty graph.
func NewRequested() *Requested {
	return &Requested{targets: make(map[Ref]mapset.Set[Ref])}
}

// Connect declares edges from one source to each target. Repeated edges are
// merged.
func (r *Requested) Connect(from Ref, to ...Ref) {
	set, ok := r.targets[from]
	if !ok {
		set = mapset.NewThreadUnsafeSet[Ref]()
		r.targets[from] = set
	}
	set.Append(to...)
}

// Targets returns the targets declared for a source, sorted.
func (r *Requested) Targets(from Ref) []Ref {
	set, ok := r.targets[from]
	if !ok {
		return nil
	}
	out := set.ToSlice()
	slices.SortFunc(out, Ref.Compare)
	return out
}

// Sources returns the inverse view: every target with its sources, sorted.
func (r *Requested) Sources() map[Ref][]Ref {
	out := make(map[Ref][]Ref)
	for _, e := range r.Edges() {
		out[e.To] = append(out[e.To], e.From)
	}
	return out
}

// Edges returns every edge ordered by source, then target.
func (r *Requested) Edges() []Edge {
	var out []Edge
	for from, set := range r.targets {
		for _, to := range set.ToSlice() {
			out = append(out, Edge{From: from, To: to})
		}
	}
	slices.SortFunc(out, func(a, b Edge) int {
		if c := a.From.Compare(b.From); c != 0 {
			return c
		}
		return a.To.Compare(b.To)
	})
	return out
}

// Len returns the number of distinct edges.
func (r *Requested) Len() int {
	n := 0
	for _, set := range r.targets {
		n += set.Cardinality()
	}
	return n
}
