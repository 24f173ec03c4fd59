package timing

import (
	"github.com/sarchlab/akitasync/sim/hooking"
)

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	TimeTeller

	Schedule(e Event)
}

// CallerID identifies the handler whose event is being dispatched. IDs are
// issued by the engine and are never reused within one engine.
type CallerID uint64

// NoCaller is reported when no event is being handled, for example in setup
// code or on a foreign goroutine.
const NoCaller CallerID = 0

// ActivityTeller answers questions about the events that are still pending.
type ActivityTeller interface {
	// HasPendingActivity tells if any event or async update is pending.
	HasPendingActivity() bool

	// HasPendingActivityAtCurrentTime tells if work remains at the current
	// instant.
	HasPendingActivityAtCurrentTime() bool

	// TimeToPendingActivity returns the delay until the next pending event.
	// It returns 0 if work is pending now and Infinity if nothing is pending.
	TimeToPendingActivity() VTimeInSec
}

// An AsyncUpdater is run on the engine goroutine after requesting an async
// update.
type AsyncUpdater interface {
	Update()
}

// An IdleHandler is invoked on the engine goroutine when no event is left.
// It may schedule events or block; the engine returns from Run if it does
// neither.
type IdleHandler interface {
	Idle(now VTimeInSec)
}

// An IdleInterrupter is an IdleHandler that can be asked, from any goroutine,
// to return from a blocking Idle call. Pause relies on it.
type IdleInterrupter interface {
	InterruptIdle()
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	hooking.Hookable
	EventScheduler
	ActivityTeller

	// RegisterHandler registers a handler to the engine and returns the
	// caller ID that identifies it while its events are dispatched.
	RegisterHandler(handler Handler) CallerID

	// CurrentCaller returns the ID of the handler being dispatched.
	CurrentCaller() CallerID

	// RequestAsyncUpdate asks the engine to call u.Update on the engine
	// goroutine. It is safe to call from any goroutine.
	RequestAsyncUpdate(u AsyncUpdater)

	// RegisterIdleHandler adds a handler to be invoked when the engine runs
	// out of events.
	RegisterIdleHandler(h IdleHandler)

	// Run will process all the events until the simulation finishes
	Run() error

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()
}
