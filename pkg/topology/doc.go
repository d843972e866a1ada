// Package topology holds the connection graph between device signals in its
// two forms.
//
// # Requested Connections
//
// Requested is pure configuration data: an adjacency from a source Ref
// (device name + signal ID) to the set of target Refs it feeds. It may name
// devices or signals that do not exist.
//
// # Running Connections
//
// Running is the resolved graph. Every edge references live signal handles,
// has been checked for matching kind and type, and obeys the cardinality
// rules:
//   - State edges are many-from-one: a source may feed many targets, but a
//     target accepts at most one source.
//   - Event edges are many-from-many.
//
// Running is immutable. A topology change means building a new one.
//
// # Resolution
//
// Resolve never stops at the first problem. It reports every missing
// endpoint, every kind or type mismatch and every cardinality violation of
// one configuration in a single *ResolveError.
package topology
