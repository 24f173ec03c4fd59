package suspend

import (
	"log"
	"sync"

	"github.com/sarchlab/akitasync/sim/timing"
)

// AsyncEvent is delivered to the handler of an AsyncNotifier once for every
// successful Notify.
type AsyncEvent struct {
	*timing.EventBase
	Notifier *AsyncNotifier
}

// AsyncNotifier lets a foreign goroutine inject work into the engine. It
// never touches engine state directly; deliveries are handed over through the
// engine's async update queue and the coordinator's wakeup.
//
// The notifier doubles as a suspending Channel, so a producer can keep the
// engine from finishing while it still holds undelivered data.
type AsyncNotifier struct {
	name        string
	coordinator *Coordinator
	handler     timing.Handler

	lock            sync.Mutex
	delays          []timing.VTimeInSec
	updateRequested bool
}

// NewAsyncNotifier creates a notifier that delivers AsyncEvents to handler. If
// startAttached is set, the notifier is attached as a suspending channel
// right away.
func NewAsyncNotifier(
	name string,
	coordinator *Coordinator,
	handler timing.Handler,
	startAttached bool,
) *AsyncNotifier {
	n := &AsyncNotifier{
		name:        name,
		coordinator: coordinator,
		handler:     handler,
	}

	if startAttached {
		n.AttachSuspending()
	}

	return n
}

// Name returns the name of the notifier.
func (n *AsyncNotifier) Name() string {
	return n.name
}

// Notify schedules an AsyncEvent delay seconds after the engine picks up the
// request and wakes the engine. It is safe to call from any goroutine. It
// returns false if the coordinator is shut down.
func (n *AsyncNotifier) Notify(delay timing.VTimeInSec) bool {
	if delay < 0 {
		log.Panicf("suspend: notifier %s got negative delay %f", n.name, delay)
	}

	if n.coordinator.isShut() {
		return false
	}

	n.lock.Lock()
	n.delays = append(n.delays, delay)
	needRequest := !n.updateRequested
	n.updateRequested = true
	n.lock.Unlock()

	if needRequest {
		n.coordinator.engine.RequestAsyncUpdate(n)
	}

	return n.coordinator.AsyncWakeup()
}

// Wake wakes the engine without delivering an event.
func (n *AsyncNotifier) Wake() bool {
	return n.coordinator.AsyncWakeup()
}

// AttachSuspending attaches the notifier as a suspending channel.
func (n *AsyncNotifier) AttachSuspending() bool {
	return n.coordinator.AttachSuspendingChannel(n)
}

// DetachSuspending detaches the notifier as a suspending channel.
func (n *AsyncNotifier) DetachSuspending() bool {
	return n.coordinator.DetachSuspendingChannel(n)
}

// Update turns the queued notifications into events. The engine calls it on
// its own goroutine.
func (n *AsyncNotifier) Update() {
	n.lock.Lock()
	delays := n.delays
	n.delays = nil
	n.updateRequested = false
	n.lock.Unlock()

	now := n.coordinator.engine.Now()
	for _, d := range delays {
		n.coordinator.engine.Schedule(AsyncEvent{
			EventBase: timing.NewEventBase(now+d, n.handler),
			Notifier:  n,
		})
	}
}
