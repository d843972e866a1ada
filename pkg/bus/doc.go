// Package bus provides the board bus that hardware drivers talk to.
//
// The wire protocol to physical boards is out of scope; this package fixes
// the contract drivers depend on and supplies an in-memory implementation:
//
//   - Bus: read input channels and write output channels of an addressed
//     board.
//   - Port: something a Link can open to obtain a Bus session, e.g. a serial
//     line. Simulated is a Port backed by in-memory boards.
//   - Link: owns one Port, tracks its state and reopens it with exponential
//     backoff after the line is lost. Drivers use the Link as their Bus.
//
// # Ownership
//
// A Port admits a single open session. Opening a second session while one
// is open is a programming error (two masters on one line) and panics with
// a *lease.ConflictError.
package bus
