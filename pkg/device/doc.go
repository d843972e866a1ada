// Package device defines the contract every participant of the signal
// exchange implements, and the ordered set the runtime keeps them in.
//
// # Contract
//
// A Device is a capability bundle:
//   - Signals: a stable map of signal IDs to type-erased handles.
//   - SourcesChanged: the coalesced wake the device fires after one of its
//     sources reported a change.
//   - TargetsChanged: a cheap synchronous callback the exchange engine calls
//     from its own goroutine when targets received new values. It must never
//     block or perform I/O.
//   - Run: the device's long-lived task. It returns Exited promptly after
//     its context is cancelled.
//
// Devices may additionally implement RequestHandler (external commands) and
// ChangeStreamer (presentation change notification). Both are optional and
// outside the exchange core.
//
// # Device-internal Errors
//
// Hardware failures, timeouts and similar faults belong to the device's own
// task. A device may log, retry or degrade, but nothing it does may make the
// exchange engine fail.
//
// # Running
//
// Runner starts every device task and the exchanger on a shared context.
// Shutdown is cooperative; a task that ignores cancellation is reported by
// name once the shutdown timeout expires.
package device
