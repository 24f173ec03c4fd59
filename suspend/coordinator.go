// Package suspend lets a single-goroutine discrete-event engine sleep when it
// has nothing useful to do, and wakes it up again when callers, suspending
// channels, or foreign goroutines need it.
//
// Exactly one Coordinator may be alive in a process. Every component that
// needs it receives a pointer to it; there is no package-level accessor.
package suspend

import (
	"fmt"
	"log"
	"sync"

	"github.com/sarchlab/akitasync/sim/hooking"
	"github.com/sarchlab/akitasync/sim/timing"
)

// Engine is the part of the discrete-event engine the Coordinator depends on.
type Engine interface {
	timing.EventScheduler
	timing.ActivityTeller

	RegisterHandler(handler timing.Handler) timing.CallerID
	CurrentCaller() timing.CallerID
	RequestAsyncUpdate(u timing.AsyncUpdater)
	RegisterIdleHandler(h timing.IdleHandler)
}

var singleton struct {
	sync.Mutex
	live *Coordinator
}

func claimSingleton(c *Coordinator) {
	singleton.Lock()
	defer singleton.Unlock()

	if singleton.live != nil {
		log.Panicf(
			"suspend: coordinator %q already exists, "+
				"only one coordinator may be constructed per process",
			singleton.live.name)
	}

	singleton.live = c
}

func releaseSingleton(c *Coordinator) {
	singleton.Lock()
	defer singleton.Unlock()

	if singleton.live == c {
		singleton.live = nil
	}
}

// Status is a snapshot of the coordinator state.
type Status struct {
	SuspendAll         uint     `json:"suspend_all"`
	Unsuspendable      uint     `json:"unsuspendable"`
	PendingWakeups     uint     `json:"pending_wakeups"`
	SuspendingChannels []string `json:"suspending_channels"`
	Sleeping           bool     `json:"sleeping"`
	Shut               bool     `json:"shut"`
}

// Coordinator decides whether the engine may sleep when it runs out of
// immediately runnable work.
//
// RequestSuspendAll, ReleaseSuspendAll, EnterUnsuspendable and
// ExitUnsuspendable are meant to be called by the handler that is currently
// being dispatched. AsyncWakeup, AttachSuspendingChannel and
// DetachSuspendingChannel may be called from any goroutine.
//
// A caller that enters an unsuspendable region and never exits it keeps the
// engine from ever sleeping. That is a broken caller contract and is not
// detected.
type Coordinator struct {
	*hooking.HookableBase

	name     string
	engine   Engine
	callerID timing.CallerID

	lock sync.Mutex
	cond *sync.Cond

	suspendAllCount    uint
	unsuspendableCount uint
	suspendAllReq      map[timing.CallerID]bool
	unsuspendableReq   map[timing.CallerID]bool
	pendingWakeups     uint
	channels           *ChannelRegistry
	sleeping           bool
	shut               bool

	sleeperPending bool
	sleeperTime    timing.VTimeInSec
	sleeperGen     uint64
}

// Name returns the name of the coordinator.
func (c *Coordinator) Name() string {
	return c.name
}

// CallerID returns the caller ID the engine issued to the coordinator.
func (c *Coordinator) CallerID() timing.CallerID {
	return c.callerID
}

// RequestSuspendAll records the caller's vote for the engine to sleep once the
// visible work is drained. A second request from the same caller is a no-op.
func (c *Coordinator) RequestSuspendAll(caller timing.CallerID) {
	c.lock.Lock()

	if c.suspendAllReq[caller] {
		c.lock.Unlock()
		return
	}

	c.suspendAllReq[caller] = true
	c.suspendAllCount++
	count := c.suspendAllCount
	c.cond.Broadcast()
	c.lock.Unlock()

	c.invokeHook(HookPosSuspendAll, Record{Caller: caller, Count: count})
	c.requestReevaluation()
}

// ReleaseSuspendAll withdraws the caller's suspend-all vote. It is a no-op if
// the caller has no outstanding request.
func (c *Coordinator) ReleaseSuspendAll(caller timing.CallerID) {
	c.lock.Lock()

	if !c.suspendAllReq[caller] {
		c.lock.Unlock()
		return
	}

	delete(c.suspendAllReq, caller)
	c.suspendAllCount = decrement(c.suspendAllCount, "suspend-all")
	count := c.suspendAllCount
	c.cond.Broadcast()
	c.lock.Unlock()

	c.invokeHook(HookPosUnsuspendAll, Record{Caller: caller, Count: count})
}

// EnterUnsuspendable opens an unsuspendable region for the caller. It never
// blocks. Entering twice without exiting is a no-op.
func (c *Coordinator) EnterUnsuspendable(caller timing.CallerID) {
	c.lock.Lock()

	if c.unsuspendableReq[caller] {
		c.lock.Unlock()
		return
	}

	c.unsuspendableReq[caller] = true
	c.unsuspendableCount++
	count := c.unsuspendableCount
	c.cond.Broadcast()
	c.lock.Unlock()

	c.invokeHook(HookPosUnsuspendable, Record{Caller: caller, Count: count})
}

// ExitUnsuspendable closes the caller's unsuspendable region and re-evaluates
// whether the engine may sleep.
func (c *Coordinator) ExitUnsuspendable(caller timing.CallerID) {
	c.lock.Lock()

	if c.unsuspendableReq[caller] {
		delete(c.unsuspendableReq, caller)
		c.unsuspendableCount = decrement(c.unsuspendableCount, "unsuspendable")
		count := c.unsuspendableCount
		c.cond.Broadcast()
		c.lock.Unlock()

		c.invokeHook(HookPosSuspendable, Record{Caller: caller, Count: count})
	} else {
		c.lock.Unlock()
	}

	c.requestReevaluation()
}

func decrement(counter uint, what string) uint {
	if counter == 0 {
		log.Panicf("suspend: %s counter would drop below zero", what)
	}

	return counter - 1
}

// AsyncWakeup wakes the engine if it sleeps, or prevents the next sleep if it
// does not. It is safe to call from any goroutine. It returns false after
// Shutdown.
func (c *Coordinator) AsyncWakeup() bool {
	c.lock.Lock()
	if c.shut {
		c.lock.Unlock()
		return false
	}

	c.pendingWakeups++
	c.cond.Broadcast()
	c.lock.Unlock()

	c.invokeHook(HookPosAsyncWakeup, Record{})

	return true
}

// AttachSuspendingChannel registers a channel with undelivered work and
// re-evaluates whether the engine may sleep. It returns false if the channel
// was already attached or the coordinator is shut down. It is safe to call
// from any goroutine.
func (c *Coordinator) AttachSuspendingChannel(ch Channel) bool {
	c.lock.Lock()
	if c.shut {
		c.lock.Unlock()
		return false
	}

	changed := c.channels.Attach(ch)
	count := uint(c.channels.Len())
	c.cond.Broadcast()
	c.lock.Unlock()

	if changed {
		c.invokeHook(HookPosAttach, Record{Channel: ch.Name(), Count: count})
		c.requestReevaluation()
	}

	return changed
}

// DetachSuspendingChannel removes a channel once its work is delivered. It
// returns false if the channel was not attached. It is safe to call from any
// goroutine.
func (c *Coordinator) DetachSuspendingChannel(ch Channel) bool {
	c.lock.Lock()
	changed := c.channels.Detach(ch)
	count := uint(c.channels.Len())
	c.cond.Broadcast()
	c.lock.Unlock()

	if changed {
		c.invokeHook(HookPosDetach, Record{Channel: ch.Name(), Count: count})
	}

	return changed
}

// Status returns a snapshot of the coordinator state.
func (c *Coordinator) Status() Status {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.statusLocked()
}

func (c *Coordinator) statusLocked() Status {
	return Status{
		SuspendAll:         c.suspendAllCount,
		Unsuspendable:      c.unsuspendableCount,
		PendingWakeups:     c.pendingWakeups,
		SuspendingChannels: c.channels.Names(),
		Sleeping:           c.sleeping,
		Shut:               c.shut,
	}
}

// Shutdown stops accepting foreign notifications and attachments, drops the
// pending wakeups, releases the engine if it sleeps, and frees the process
// slot so that a new Coordinator can be built. Calling it twice is a no-op.
func (c *Coordinator) Shutdown() {
	c.lock.Lock()
	if c.shut {
		c.lock.Unlock()
		return
	}

	c.shut = true
	c.pendingWakeups = 0
	c.cond.Broadcast()
	c.lock.Unlock()

	releaseSingleton(c)
}

func (c *Coordinator) invokeHook(pos *hooking.HookPos, rec Record) {
	if c.NumHooks() == 0 {
		return
	}

	rec.Time = c.engine.Now()
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   rec,
	})
}

func (c *Coordinator) String() string {
	s := c.Status()

	return fmt.Sprintf(
		"%s{suspend_all=%d unsuspendable=%d wakeups=%d channels=%d}",
		c.name, s.SuspendAll, s.Unsuspendable, s.PendingWakeups,
		len(s.SuspendingChannels))
}

func (c *Coordinator) isShut() bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.shut
}
