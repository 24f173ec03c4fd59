package suspend

import (
	"log"

	"github.com/sarchlab/akitasync/sim/timing"
)

// Decision is the outcome of one pass over the idle decision table.
type Decision int

// The rows of the decision table, in the order they are checked.
const (
	// DecisionPassThrough leaves the engine to its default idle behavior
	// because no suspension policy is active.
	DecisionPassThrough Decision = iota

	// DecisionKeepProgressing re-checks at the next pending activity because
	// an unsuspendable region is open while suspension is requested.
	DecisionKeepProgressing

	// DecisionDrainActivity re-checks at the next pending activity because
	// visible work takes priority over suspending channels.
	DecisionDrainActivity

	// DecisionWaitForIdle re-checks at the current instant because work is
	// still pending now.
	DecisionWaitForIdle

	// DecisionSleep blocks the engine goroutine until woken.
	DecisionSleep
)

func (d Decision) String() string {
	switch d {
	case DecisionPassThrough:
		return "PassThrough"
	case DecisionKeepProgressing:
		return "KeepProgressing"
	case DecisionDrainActivity:
		return "DrainActivity"
	case DecisionWaitForIdle:
		return "WaitForIdle"
	case DecisionSleep:
		return "Sleep"
	default:
		log.Panicf("suspend: unknown decision %d", int(d))
	}

	return ""
}

// sleeperEvent asks the coordinator to evaluate the decision table. Only the
// most recently scheduled sleeperEvent is acted upon.
type sleeperEvent struct {
	*timing.EventBase
	gen uint64
}

// Handle runs the decision table when a sleeperEvent fires.
func (c *Coordinator) Handle(e timing.Event) error {
	evt, ok := e.(sleeperEvent)
	if !ok {
		log.Panicf("suspend: cannot handle event of type %T", e)
	}

	c.lock.Lock()
	stale := evt.gen != c.sleeperGen || !c.sleeperPending
	if !stale {
		c.sleeperPending = false
	}
	c.lock.Unlock()

	if stale {
		return nil
	}

	c.evaluate()

	return nil
}

// Idle runs the decision table when the engine has no event left.
func (c *Coordinator) Idle(_ timing.VTimeInSec) {
	c.evaluate()
}

// InterruptIdle wakes a sleeping coordinator so that it notices activity the
// engine has queued. It does not withdraw any vote.
func (c *Coordinator) InterruptIdle() {
	c.lock.Lock()
	c.cond.Broadcast()
	c.lock.Unlock()
}

// Update schedules a re-evaluation at the current instant. The engine calls
// it on its own goroutine after requestReevaluation.
func (c *Coordinator) Update() {
	c.scheduleSleeper(c.engine.Now())
}

// requestReevaluation must be called without holding c.lock. The broadcast
// comes after the update is queued so that a sleeping engine sees it.
func (c *Coordinator) requestReevaluation() {
	c.engine.RequestAsyncUpdate(c)

	c.lock.Lock()
	c.cond.Broadcast()
	c.lock.Unlock()
}

// scheduleSleeper makes sure a sleeperEvent fires no later than t. A pending
// earlier or equal sleeperEvent already covers the request.
func (c *Coordinator) scheduleSleeper(t timing.VTimeInSec) {
	c.lock.Lock()
	if c.shut || (c.sleeperPending && c.sleeperTime <= t) {
		c.lock.Unlock()
		return
	}

	c.sleeperGen++
	c.sleeperPending = true
	c.sleeperTime = t
	evt := sleeperEvent{
		EventBase: timing.NewSecondaryEventBase(t, c),
		gen:       c.sleeperGen,
	}
	c.lock.Unlock()

	c.engine.Schedule(evt)
}

// evaluate walks the decision table until it either hands control back to
// the engine or schedules the next check. A wake-up while suspension is still
// requested starts the table over instead of returning.
func (c *Coordinator) evaluate() {
	for {
		d := c.decide()
		c.invokeHook(HookPosDecision, Record{Decision: d})

		switch d {
		case DecisionPassThrough:
			return
		case DecisionKeepProgressing, DecisionDrainActivity:
			delay := c.engine.TimeToPendingActivity()
			c.scheduleSleeper(c.engine.Now() + delay)
			return
		case DecisionWaitForIdle:
			c.scheduleSleeper(c.engine.Now())
			return
		case DecisionSleep:
			if !c.sleep() {
				return
			}
		}
	}
}

func (c *Coordinator) decide() Decision {
	c.lock.Lock()
	suspendAll := c.suspendAllCount
	unsuspendable := c.unsuspendableCount
	hasChannels := c.channels.HasAny()
	shut := c.shut
	c.lock.Unlock()

	switch {
	case shut:
		return DecisionPassThrough
	case unsuspendable == 0 && suspendAll == 0 && !hasChannels:
		return DecisionPassThrough
	case suspendAll > 0 && unsuspendable > 0 &&
		c.engine.HasPendingActivity():
		return DecisionKeepProgressing
	case suspendAll == 0 && hasChannels &&
		c.engine.HasPendingActivity():
		return DecisionDrainActivity
	case c.engine.HasPendingActivityAtCurrentTime():
		return DecisionWaitForIdle
	default:
		return DecisionSleep
	}
}

// sleep blocks until a wake condition holds and reports whether suspension is
// still requested afterwards.
func (c *Coordinator) sleep() (stillRequested bool) {
	c.invokeHook(HookPosSleep, Record{})

	c.lock.Lock()
	c.sleeping = true
	for !c.canWakeLocked() {
		c.cond.Wait()
	}

	if c.pendingWakeups > 0 {
		c.pendingWakeups--
	}

	c.sleeping = false
	stillRequested = !c.shut &&
		(c.suspendAllCount > 0 || c.channels.HasAny())
	c.lock.Unlock()

	c.invokeHook(HookPosWake, Record{})

	return stillRequested
}

func (c *Coordinator) canWakeLocked() bool {
	switch {
	case c.shut:
		return true
	case c.pendingWakeups > 0:
		return true
	case c.unsuspendableCount > 0:
		return true
	case c.suspendAllCount == 0 && !c.channels.HasAny():
		return true
	default:
		return c.engine.TimeToPendingActivity() == 0
	}
}
