// Package duration manages named expiry timers for timed logic blocks.
//
// # Timer Lifecycle
//
// A timer starts when SetTimer is called. When it expires, the expiry
// callback receives the key and the value the timer was set with.
//
// # Timer Replacement
//
// Setting a timer under a key that already has one replaces it. The
// replaced timer never fires, even if its expiry raced with the call.
//
// # Shutdown
//
// Timers are not persisted. CancelAll stops every pending timer without
// firing callbacks; devices call it when their task ends.
package duration
