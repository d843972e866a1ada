// Package log provides the structured exchange trace for mash-logic.
//
// This package defines the Logger interface and Event types for capturing
// what the exchanger does while it settles the signal graph: settles,
// pushes along connections, device invocations and fatal errors. It is
// separate from operational logging (slog) - the trace is a complete
// machine-readable record for debugging wiring and propagation.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: trace to console via slog
//	cfg.Tracer = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Tracer, _ = log.NewFileLogger("/var/lib/mash-logic/run.mtrace")
//
//	// Both: use MultiLogger
//	cfg.Tracer = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Every event carries the run ID and the settle sequence number. The
// payload depends on the category:
//   - Settle: one completed settle (SettleEvent)
//   - Push: values moved along one connection (PushEvent)
//   - Invoke: a device's TargetsChanged was called (InvokeEvent)
//   - Error: a fatal exchange error (ErrorEventData)
//
// # File Format
//
// Trace files use CBOR encoding with .mtrace extension. The mash-trace CLI
// tool provides viewing, filtering, statistics and export.
package log
