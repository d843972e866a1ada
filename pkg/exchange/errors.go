package exchange

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRoundLimitExceeded is matched by every *RoundLimitError.
var ErrRoundLimitExceeded = errors.New("propagation round limit exceeded")

// RoundLimitError reports a settle that did not reach quiescence.
type RoundLimitError struct {
	// Settle is the settle sequence number.
	Settle uint64

	// Rounds is the configured limit.
	Rounds int

	// Armed lists the devices still armed after the last round.
	Armed []string
}

func (e *RoundLimitError) Error() string {
	return fmt.Sprintf("%s: settle %d not quiescent after %d rounds, still armed: %s",
		ErrRoundLimitExceeded, e.Settle, e.Rounds, strings.Join(e.Armed, ", "))
}

// Unwrap lets errors.Is match ErrRoundLimitExceeded.
func (e *RoundLimitError) Unwrap() error {
	return ErrRoundLimitExceeded
}
