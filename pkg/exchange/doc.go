// Package exchange implements the propagation engine that moves values
// along resolved connections and drives devices to quiescence.
//
// # Settling
//
// Every device exposes a coalesced "sources changed" wake. The Exchanger
// registers one aggregate notifier on all of them, so any number of fires
// collapse into a single pending settle. A settle runs rounds until no
// device is armed:
//
//  1. Poll every device's wake in visitation order; the armed devices have
//     all their source signals drained.
//  2. State deltas are set on every connected target, event batches are
//     pushed into every connected target.
//  3. Devices with at least one changed target get TargetsChanged called
//     synchronously, in visitation order. They may set their own sources,
//     which re-arms them for the next round.
//
// A cyclic configuration can keep re-arming forever. The number of rounds
// per settle is capped (Config.MaxRounds); exceeding it is fatal and
// reported as a *RoundLimitError.
//
// # Visitation Order
//
// Devices are visited in topological order of the device graph, ties broken
// by declaration order. Devices on cycles follow in declaration order. Into
// an event target fed by several sources, delivery order within one round is
// this visitation order.
package exchange
