// Package wake implements coalesced, edge-triggered change notification.
//
// A Signal is an atomic "armed" flag paired with a registered Notifier.
// Any number of Wake calls issued between two polls collapse into a single
// pending notification, so memory stays bounded no matter how often a
// producer fires, while a wake issued after the flag was last cleared is
// always observed by the next poll.
//
// # Signals and Notifiers
//
// A Notifier is a one-slot channel. Several Signals may share one Notifier;
// the exchange engine registers a single Notifier on every device's
// "sources changed" Signal and then polls each Signal to find out which
// devices fired:
//
//	n := wake.NewNotifier()
//	for _, s := range signals {
//	    s.Register(n)
//	}
//	for {
//	    <-n.C()
//	    for i, s := range signals {
//	        if s.Poll() {
//	            // device i changed
//	        }
//	    }
//	}
//
// # Change Streams
//
// Presentation adapters use the same primitive through Wait, which blocks
// until the Signal fires or the context is done.
package wake
