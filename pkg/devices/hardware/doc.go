// Package hardware provides drivers for digital I/O boards on the board
// bus.
//
// Drivers never touch the bus from TargetsChanged. Inputs are polled by the
// device task; relay writes are handed to the task through a wake. Both
// drivers expose a "fault" state that is true while the board does not
// answer, and retry with exponential backoff.
package hardware

// Class names.
const (
	ClassInputs = "hardware/inputs"
	ClassRelays = "hardware/relays"
)
