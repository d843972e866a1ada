// Package logic provides the built-in logic blocks.
//
// Each block is a device.Device with fixed signal IDs and names:
//
//	logic/constant   out (state)                    set/get requests
//	logic/inverter   in (state) -> out (state)
//	logic/edge       in (state, queued) -> edges (event)
//	logic/counter    in (event, queued) -> count (state), reset request
//	logic/holder     in (event, last) -> out (state)
//	logic/message    out (event)                    send request
//	logic/logger     bool, number (state, queued)
//	logic/recorder   in (state, queued), records to a CBOR file
//	logic/timer      in<i> (state) -> out<i> (state), pulse or delay
//	logic/failsafe   fault (state) -> active (state), status/reset requests
//
// Blocks react in TargetsChanged and never block there. Blocks that do I/O
// hand the work to their Run task.
package logic

// Class names.
const (
	ClassConstant = "logic/constant"
	ClassInverter = "logic/inverter"
	ClassEdge     = "logic/edge"
	ClassCounter  = "logic/counter"
	ClassHolder   = "logic/holder"
	ClassMessage  = "logic/message"
	ClassLogger   = "logic/logger"
	ClassRecorder = "logic/recorder"
	ClassTimer    = "logic/timer"
	ClassFailsafe = "logic/failsafe"
)
