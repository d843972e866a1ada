package bus

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mash-protocol/mash-logic/pkg/lease"
)

// BoardSpec describes one simulated board.
type BoardSpec struct {
	Address Address `yaml:"address" mapstructure:"address"`
	Inputs  int     `yaml:"inputs" mapstructure:"inputs"`
	Outputs int     `yaml:"outputs" mapstructure:"outputs"`
}

type board struct {
	inputs  []bool
	outputs []bool
	fail    int
	failErr error
}

// boards is the line state shared by the Simulated port and its sessions.
type boards struct {
	mu         sync.Mutex
	byAddr     map[Address]*board
	generation uint64
	txns       uint64
}

// Simulated is an in-memory Port with programmable boards. Tests and demo
// configurations drive inputs and inspect outputs directly.
type Simulated struct {
	line  *lease.Lease[*boards]
	state *boards
}

// NewSimulated creates a simulated bus populated with boards.
func NewSimulated(specs ...BoardSpec) *Simulated {
	b := &boards{byAddr: make(map[Address]*board)}
	for _, s := range specs {
		b.byAddr[s.Address] = &board{
			inputs:  make([]bool, s.Inputs),
			outputs: make([]bool, s.Outputs),
		}
	}
	return &Simulated{line: lease.New("bus", b), state: b}
}

// Open implements Port. It panics if a session is already open.
func (s *Simulated) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g := s.line.Acquire("session")
	b := g.Value()
	b.mu.Lock()
	gen := b.generation
	b.mu.Unlock()
	return &simSession{guard: g, line: b, generation: gen}, nil
}

// peek runs fn on the line state. Test hooks bypass the session lease;
// the line mutex serializes them with transactions.
func (s *Simulated) peek(fn func(b *boards)) {
	fn(s.state)
}

// SetInputs sets the input channels of the board at addr.
func (s *Simulated) SetInputs(addr Address, values []bool) error {
	var err error
	s.peek(func(b *boards) {
		b.mu.Lock()
		defer b.mu.Unlock()
		bd, ok := b.byAddr[addr]
		if !ok {
			err = fmt.Errorf("%w %s", ErrNoBoard, addr)
			return
		}
		if len(values) != len(bd.inputs) {
			err = fmt.Errorf("%w: board %s has %d inputs, got %d", ErrChannels, addr, len(bd.inputs), len(values))
			return
		}
		copy(bd.inputs, values)
	})
	return err
}

// Outputs returns the output channels of the board at addr.
func (s *Simulated) Outputs(addr Address) ([]bool, error) {
	var out []bool
	var err error
	s.peek(func(b *boards) {
		b.mu.Lock()
		defer b.mu.Unlock()
		bd, ok := b.byAddr[addr]
		if !ok {
			err = fmt.Errorf("%w %s", ErrNoBoard, addr)
			return
		}
		out = slices.Clone(bd.outputs)
	})
	return out, err
}

// Inputs returns the input channels of the board at addr.
func (s *Simulated) Inputs(addr Address) ([]bool, error) {
	var in []bool
	var err error
	s.peek(func(b *boards) {
		b.mu.Lock()
		defer b.mu.Unlock()
		bd, ok := b.byAddr[addr]
		if !ok {
			err = fmt.Errorf("%w %s", ErrNoBoard, addr)
			return
		}
		in = slices.Clone(bd.inputs)
	})
	return in, err
}

// Addresses returns the board addresses in ascending order.
func (s *Simulated) Addresses() []Address {
	var out []Address
	s.peek(func(b *boards) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for addr := range b.byAddr {
			out = append(out, addr)
		}
	})
	slices.Sort(out)
	return out
}

// FailNext makes the next n transactions with addr fail with err.
func (s *Simulated) FailNext(addr Address, n int, err error) {
	s.peek(func(b *boards) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if bd, ok := b.byAddr[addr]; ok {
			bd.fail = n
			bd.failErr = err
		}
	})
}

// Drop simulates losing the line: every open session fails with
// ErrLinkLost from now on.
func (s *Simulated) Drop() {
	s.peek(func(b *boards) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.generation++
	})
}

// Transactions returns the number of transactions performed so far.
func (s *Simulated) Transactions() uint64 {
	var n uint64
	s.peek(func(b *boards) {
		b.mu.Lock()
		defer b.mu.Unlock()
		n = b.txns
	})
	return n
}

type simSession struct {
	guard      *lease.Guard[*boards]
	line       *boards
	generation uint64

	mu     sync.Mutex
	closed bool
}

func (s *simSession) transact(ctx context.Context, addr Address, fn func(bd *board) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionDone
	}

	s.line.mu.Lock()
	defer s.line.mu.Unlock()
	if s.line.generation != s.generation {
		return ErrLinkLost
	}
	s.line.txns++
	bd, ok := s.line.byAddr[addr]
	if !ok {
		return fmt.Errorf("%w %s", ErrNoBoard, addr)
	}
	if bd.fail > 0 {
		bd.fail--
		return bd.failErr
	}
	return fn(bd)
}

func (s *simSession) ReadInputs(ctx context.Context, addr Address) ([]bool, error) {
	var out []bool
	err := s.transact(ctx, addr, func(bd *board) error {
		out = slices.Clone(bd.inputs)
		return nil
	})
	return out, err
}

func (s *simSession) WriteOutputs(ctx context.Context, addr Address, values []bool) error {
	return s.transact(ctx, addr, func(bd *board) error {
		if len(values) != len(bd.outputs) {
			return fmt.Errorf("%w: board %s has %d outputs, got %d", ErrChannels, addr, len(bd.outputs), len(values))
		}
		copy(bd.outputs, values)
		return nil
	})
}

func (s *simSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.guard.Release()
	return nil
}

// Compile-time interface satisfaction checks.
var (
	_ Port    = (*Simulated)(nil)
	_ Session = (*simSession)(nil)
)
