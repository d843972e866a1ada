// Package persistence stores the retained state of devices between runs.
//
// Devices that implement device.Retainer hand out a small map of values when
// the runtime shuts down and get it back before the first settle of the
// next run. The file is JSON so operators can read and edit it.
package persistence
