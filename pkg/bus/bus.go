package bus

import (
	"context"
	"errors"
	"fmt"
)

// Bus errors.
var (
	ErrNoBoard     = errors.New("no board at address")
	ErrChannels    = errors.New("channel count mismatch")
	ErrLinkLost    = errors.New("bus link lost")
	ErrNotOpen     = errors.New("bus link not open")
	ErrLinkClosed  = errors.New("bus link closed")
	ErrSessionDone = errors.New("bus session closed")
)

// Address identifies a board on the bus.
type Address uint8

// String returns the address in hex.
func (a Address) String() string {
	return fmt.Sprintf("0x%02x", uint8(a))
}

// Bus performs transactions with addressed boards. Implementations are safe
// for concurrent use and serialize transactions internally.
type Bus interface {
	// ReadInputs returns the state of every input channel of the board.
	ReadInputs(ctx context.Context, addr Address) ([]bool, error)

	// WriteOutputs sets every output channel of the board.
	WriteOutputs(ctx context.Context, addr Address, values []bool) error
}

// Session is an open Bus obtained from a Port.
type Session interface {
	Bus

	// Close ends the session and releases the port.
	Close() error
}

// Port opens bus sessions.
type Port interface {
	Open(ctx context.Context) (Session, error)
}
