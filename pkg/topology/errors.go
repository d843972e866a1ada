package topology

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// Resolution error classes. A *ResolveError matches each class that occurs
// in it with errors.Is.
var (
	ErrMissingEndpoint = errors.New("missing endpoint")
	ErrTypeMismatch    = errors.New("kind or type mismatch")
	ErrCardinality     = errors.New("cardinality violation")
)

// FailureKind classifies one resolution failure.
type FailureKind uint8

const (
	// FailureMissingEndpoint indicates an edge names a signal no device exposes.
	FailureMissingEndpoint FailureKind = iota + 1

	// FailureKindOrTypeMismatch indicates the two ends of an edge cannot be
	// connected: wrong roles, different kinds or different value types.
	FailureKindOrTypeMismatch

	// FailureCardinalityViolation indicates a state target with more than
	// one source.
	FailureCardinalityViolation
)

// String returns the failure kind name.
func (k FailureKind) String() string {
	switch k {
	case FailureMissingEndpoint:
		return "MissingEndpoint"
	case FailureKindOrTypeMismatch:
		return "KindOrTypeMismatch"
	case FailureCardinalityViolation:
		return "CardinalityViolation"
	default:
		return "Unknown"
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailureMissingEndpoint:
		return ErrMissingEndpoint
	case FailureKindOrTypeMismatch:
		return ErrTypeMismatch
	case FailureCardinalityViolation:
		return ErrCardinality
	default:
		return nil
	}
}

// Failure is one problem found during resolution.
type Failure struct {
	Kind FailureKind

	// Endpoint is the unresolvable ref (MissingEndpoint).
	Endpoint Ref

	// Source and Target are the edge ends (KindOrTypeMismatch), or the
	// contested target (CardinalityViolation, Target only).
	Source Ref
	Target Ref

	// SourceRole, SourceType, TargetRole and TargetType describe a
	// mismatching edge.
	SourceRole signal.Role
	SourceType signal.TypeTag
	TargetRole signal.Role
	TargetType signal.TypeTag

	// Sources lists every source competing for Target (CardinalityViolation).
	Sources []Ref
}

// String renders the failure for reports.
func (f Failure) String() string {
	switch f.Kind {
	case FailureMissingEndpoint:
		return fmt.Sprintf("%s: %s", f.Kind, f.Endpoint)
	case FailureKindOrTypeMismatch:
		return fmt.Sprintf("%s: %s (%s %s) -> %s (%s %s)",
			f.Kind, f.Source, f.SourceRole, f.SourceType, f.Target, f.TargetRole, f.TargetType)
	case FailureCardinalityViolation:
		names := make([]string, len(f.Sources))
		for i, s := range f.Sources {
			names[i] = s.String()
		}
		return fmt.Sprintf("%s: state target %s has %d sources [%s]",
			f.Kind, f.Target, len(f.Sources), strings.Join(names, ", "))
	default:
		return f.Kind.String()
	}
}

// ResolveError aggregates every failure of one resolution pass.
type ResolveError struct {
	Failures []Failure
}

func (e *ResolveError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "connection resolution failed with %d error(s)", len(e.Failures))
	for _, f := range e.Failures {
		b.WriteString("\n  - ")
		b.WriteString(f.String())
	}
	return b.String()
}

// Unwrap returns one sentinel per failure kind present.
func (e *ResolveError) Unwrap() []error {
	seen := make(map[FailureKind]bool)
	var errs []error
	for _, f := range e.Failures {
		if seen[f.Kind] {
			continue
		}
		seen[f.Kind] = true
		errs = append(errs, f.Kind.sentinel())
	}
	return errs
}

// ByKind returns the failures of one kind.
func (e *ResolveError) ByKind(kind FailureKind) []Failure {
	var out []Failure
	for _, f := range e.Failures {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
