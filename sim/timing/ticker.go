package timing

import (
	"sync"
)

// TickEvent is a generic event that almost all the component can use to
// update their status.
type TickEvent struct {
	*EventBase
}

// MakeTickEvent creates a new TickEvent
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	return TickEvent{EventBase: NewEventBase(time, handler)}
}

// A Ticker is an object that updates states with ticks.
type Ticker interface {
	Tick() bool
}

// TickScheduler can help schedule tick events.
type TickScheduler struct {
	lock    sync.Mutex
	handler Handler
	Freq    Freq
	Engine  EventScheduler

	nextTickTime VTimeInSec
}

// NewTickScheduler creates a scheduler for tick events.
func NewTickScheduler(
	handler Handler,
	engine EventScheduler,
	freq Freq,
) *TickScheduler {
	ticker := new(TickScheduler)

	ticker.handler = handler
	ticker.Engine = engine
	ticker.Freq = freq
	ticker.nextTickTime = -1 // This will make sure the first tick is scheduled

	return ticker
}

// TickNow schedule a Tick event at the current time.
func (t *TickScheduler) TickNow() {
	t.lock.Lock()
	defer t.lock.Unlock()

	time := t.Freq.ThisTick(t.Engine.Now())
	if t.nextTickTime >= time {
		return
	}

	t.nextTickTime = time
	t.Engine.Schedule(MakeTickEvent(t.handler, time))
}

// TickLater will schedule a tick event at the cycle after the now time.
func (t *TickScheduler) TickLater() {
	t.lock.Lock()
	defer t.lock.Unlock()

	time := t.Freq.NextTick(t.Engine.Now())
	if t.nextTickTime >= time {
		return
	}

	t.nextTickTime = time
	t.Engine.Schedule(MakeTickEvent(t.handler, time))
}
