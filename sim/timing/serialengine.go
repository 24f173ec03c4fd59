package timing

import (
	"log"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/akitasync/sim/hooking"
)

// A SerialEngine is an Engine that always run events one after another.
type SerialEngine struct {
	*hooking.HookableBase

	timeLock       sync.RWMutex
	time           VTimeInSec
	queue          EventQueue
	secondaryQueue EventQueue

	callerLock    sync.Mutex
	callers       map[Handler]CallerID
	nextCallerID  CallerID
	currentCaller atomic.Uint64

	asyncLock    sync.Mutex
	asyncUpdates []AsyncUpdater

	idleLock     sync.Mutex
	idleHandlers []IdleHandler

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)

	e.HookableBase = hooking.NewHookableBase()
	e.queue = NewEventQueue()
	e.secondaryQueue = NewEventQueue()
	e.callers = make(map[Handler]CallerID)

	return e
}

// Name returns the name of the engine.
func (e *SerialEngine) Name() string {
	return "SerialEngine"
}

// Schedule register an event to be happen in the future
func (e *SerialEngine) Schedule(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		log.Panicf(
			"scheduling an event earlier than current time, evt %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}

	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)

		return
	}

	e.queue.Push(evt)
}

func (e *SerialEngine) readNow() VTimeInSec {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) writeNow(t VTimeInSec) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// RegisterHandler assigns a caller ID to the handler. Registering the same
// handler again returns the ID it already has.
func (e *SerialEngine) RegisterHandler(handler Handler) CallerID {
	e.callerLock.Lock()
	defer e.callerLock.Unlock()

	return e.callerIDLocked(handler)
}

func (e *SerialEngine) callerIDLocked(handler Handler) CallerID {
	if callerID, ok := e.callers[handler]; ok {
		return callerID
	}

	e.nextCallerID++
	e.callers[handler] = e.nextCallerID

	return e.nextCallerID
}

func (e *SerialEngine) callerOf(handler Handler) CallerID {
	e.callerLock.Lock()
	defer e.callerLock.Unlock()

	return e.callerIDLocked(handler)
}

// CurrentCaller returns the caller ID of the handler whose event is being
// dispatched, or NoCaller between events.
func (e *SerialEngine) CurrentCaller() CallerID {
	return CallerID(e.currentCaller.Load())
}

// RequestAsyncUpdate queues u to be updated on the engine goroutine before the
// next event is selected. It is safe to call from any goroutine.
func (e *SerialEngine) RequestAsyncUpdate(u AsyncUpdater) {
	e.asyncLock.Lock()
	e.asyncUpdates = append(e.asyncUpdates, u)
	e.asyncLock.Unlock()
}

func (e *SerialEngine) hasAsyncUpdates() bool {
	e.asyncLock.Lock()
	defer e.asyncLock.Unlock()

	return len(e.asyncUpdates) > 0
}

func (e *SerialEngine) drainAsyncUpdates() {
	e.asyncLock.Lock()
	updates := e.asyncUpdates
	e.asyncUpdates = nil
	e.asyncLock.Unlock()

	for _, u := range updates {
		u.Update()
	}
}

// RegisterIdleHandler adds a handler that is invoked when no event is left.
func (e *SerialEngine) RegisterIdleHandler(h IdleHandler) {
	e.idleLock.Lock()
	e.idleHandlers = append(e.idleHandlers, h)
	e.idleLock.Unlock()
}

func (e *SerialEngine) listIdleHandlers() []IdleHandler {
	e.idleLock.Lock()
	defer e.idleLock.Unlock()

	return append([]IdleHandler(nil), e.idleHandlers...)
}

// Run processes all the events scheduled in the SerialEngine
func (e *SerialEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		e.pauseLock.Lock()

		e.drainAsyncUpdates()

		if e.noMoreEvent() {
			finished := e.idle()
			e.pauseLock.Unlock()

			if finished {
				return nil
			}

			continue
		}

		e.dispatch(e.nextEvent())

		e.pauseLock.Unlock()
	}
}

func (e *SerialEngine) idle() (finished bool) {
	now := e.readNow()
	for _, h := range e.listIdleHandlers() {
		h.Idle(now)
	}

	return e.noMoreEvent() && !e.hasAsyncUpdates()
}

func (e *SerialEngine) dispatch(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		log.Panicf(
			"cannot run event in the past, evt %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}

	e.writeNow(evt.Time())

	hookCtx := hooking.HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	handler := evt.Handler()
	e.currentCaller.Store(uint64(e.callerOf(handler)))
	_ = handler.Handle(evt)
	e.currentCaller.Store(uint64(NoCaller))

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)
}

func (e *SerialEngine) noMoreEvent() bool {
	return e.queue.Len() == 0 && e.secondaryQueue.Len() == 0
}

func (e *SerialEngine) nextEvent() Event {
	if e.queue.Len() == 0 {
		return e.secondaryQueue.Pop()
	}

	if e.secondaryQueue.Len() == 0 {
		return e.queue.Pop()
	}

	primaryEvt := e.queue.Peek()
	secondaryEvt := e.secondaryQueue.Peek()

	if primaryEvt.Time() <= secondaryEvt.Time() {
		e.queue.Pop()
		return primaryEvt
	}

	e.secondaryQueue.Pop()

	return secondaryEvt
}

// earliest returns the time of the earliest queued event.
func (e *SerialEngine) earliest() (VTimeInSec, bool) {
	found := false
	t := Infinity

	if evt := e.queue.Peek(); evt != nil {
		t = evt.Time()
		found = true
	}

	if evt := e.secondaryQueue.Peek(); evt != nil && evt.Time() < t {
		t = evt.Time()
		found = true
	}

	return t, found
}

// HasPendingActivity tells if any event or async update is pending.
func (e *SerialEngine) HasPendingActivity() bool {
	return !e.noMoreEvent() || e.hasAsyncUpdates()
}

// HasPendingActivityAtCurrentTime tells if an async update is pending or an
// event is scheduled at the current time.
func (e *SerialEngine) HasPendingActivityAtCurrentTime() bool {
	return e.TimeToPendingActivity() == 0
}

// TimeToPendingActivity returns the delay until the next pending event, 0 if
// an async update is pending, or Infinity if nothing is pending.
func (e *SerialEngine) TimeToPendingActivity() VTimeInSec {
	if e.hasAsyncUpdates() {
		return 0
	}

	t, found := e.earliest()
	if !found {
		return Infinity
	}

	return t - e.readNow()
}

// Pause prevents the SerialEngine to trigger more events. A pending pause
// counts as activity at the current time, and idle handlers blocked in Idle
// are interrupted so that the engine loop can let go of the pause lock.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.RequestAsyncUpdate(pauseRequest{})

	for _, h := range e.listIdleHandlers() {
		if i, ok := h.(IdleInterrupter); ok {
			i.InterruptIdle()
		}
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

type pauseRequest struct{}

func (pauseRequest) Update() {}

// Now returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *SerialEngine) Now() VTimeInSec {
	return e.readNow()
}
