// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract interface for the single-threaded readiness dispatcher
// and the callback contract of the sources registered with it.

package api

// Handler is invoked by the dispatcher when its descriptor is ready.
// The mask passed in is the effective mask: reported readiness merged with
// any forced bits, normalized so that EventHangup implies EventReadable.
// OnReady may call any Dispatcher method, including ones affecting its own
// registration.
type Handler interface {
	OnReady(mask EventMask)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(mask EventMask)

// OnReady calls f(mask).
func (f HandlerFunc) OnReady(mask EventMask) { f(mask) }

// Dispatcher tracks active descriptors and dispatches their readiness.
// All methods must be called from the goroutine that runs the dispatcher.
type Dispatcher interface {
	// Register adds fd with the given interest. fd must not be registered.
	Register(fd int, interest EventMask, h Handler)

	// Deregister removes fd immediately. fd must be registered.
	Deregister(fd int)

	// SetInterest sets interest to (interest & keep) | set.
	SetInterest(fd int, keep, set EventMask)

	// ForceEvents guarantees a callback on the next sweep with at least mask,
	// without blocking on the environment.
	ForceEvents(fd int, mask EventMask)

	// Run waits and dispatches until no registrations remain.
	Run()
}
