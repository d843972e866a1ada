// Package runtime assembles a running system from a configuration
// document: bus, devices, connections, exchanger and device runner, plus
// the exchange trace, metrics and retained state around them.
//
// Build does everything that can fail on bad configuration and reports all
// problems it finds. Run does the rest and blocks until the context is
// cancelled or the exchanger fails.
package runtime
