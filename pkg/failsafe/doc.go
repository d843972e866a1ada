// Package failsafe implements the fault watchdog behind the logic/failsafe
// block.
//
// A fault that clears quickly is tolerated. Only a fault that persists for
// the configured duration trips the watchdog.
//
// # Timer Behavior
//
//   - Starts when a fault is reported
//   - Stops when the fault clears before the duration elapses
//   - Trips into failsafe on expiry
//
// # Grace Period
//
// After a tripped fault clears, the watchdog stays active for the grace
// period. A fault reported during the grace period trips it again at once,
// so a flapping input keeps the watchdog active.
package failsafe
