// Package vcpu models a processor that keeps the engine busy while it has
// instructions to run and, optionally, waits for interrupts when it has none.
package vcpu

import (
	"log"
	"sync/atomic"

	"github.com/sarchlab/akitasync/sim/timing"
)

// Engine is what the CPU needs from the engine.
type Engine interface {
	timing.EventScheduler
	RegisterHandler(handler timing.Handler) timing.CallerID
}

// Coordinator is what the CPU needs from the suspend coordinator.
type Coordinator interface {
	RequestSuspendAll(caller timing.CallerID)
	ReleaseSuspendAll(caller timing.CallerID)
	EnterUnsuspendable(caller timing.CallerID)
	ExitUnsuspendable(caller timing.CallerID)
}

// ProgressReporter follows the instruction budget. Work is added when it is
// fed, moved to finished as it executes, and dropped when the CPU halts.
type ProgressReporter interface {
	IncrementTotal(amount uint64)
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
	DropInProgress(amount uint64)
}

// CPU executes a budget of instructions at a fixed rate. While the budget is
// not exhausted it holds an unsuspendable region, so the engine keeps
// advancing time. When waitForInterrupt is set, an idle CPU asks the engine
// to suspend until more work is fed to it.
//
// Except for Executed and Halted, methods must be called on the engine
// goroutine.
type CPU struct {
	*timing.TickScheduler

	name        string
	callerID    timing.CallerID
	coordinator Coordinator
	progress    ProgressReporter

	ipc              uint64
	waitForInterrupt bool

	remaining     uint64
	unsuspendable bool
	suspending    bool

	executed atomic.Uint64
	halted   atomic.Bool
}

// Name returns the name of the CPU.
func (c *CPU) Name() string {
	return c.name
}

// CallerID returns the identity the CPU uses with the coordinator.
func (c *CPU) CallerID() timing.CallerID {
	return c.callerID
}

// Remaining returns the number of instructions left in the budget.
func (c *CPU) Remaining() uint64 {
	return c.remaining
}

// Executed returns the number of instructions executed so far. It is safe
// from any goroutine.
func (c *CPU) Executed() uint64 {
	return c.executed.Load()
}

// Halted tells if the CPU has been halted. It is safe from any goroutine.
func (c *CPU) Halted() bool {
	return c.halted.Load()
}

// Start begins executing the initial budget, or goes idle if there is none.
func (c *CPU) Start() {
	if c.remaining > 0 {
		c.reportQueued(c.remaining)
		c.becomeBusy()
		c.TickNow()

		return
	}

	c.becomeIdle()
}

// Feed adds instructions to the budget and wakes the CPU up if it is idle.
func (c *CPU) Feed(instructions uint64) {
	if c.Halted() || instructions == 0 {
		return
	}

	c.remaining += instructions
	c.reportQueued(instructions)
	c.becomeBusy()
	c.TickLater()
}

// Halt stops the CPU for good and withdraws all its votes.
func (c *CPU) Halt() {
	if c.halted.Swap(true) {
		return
	}

	if c.progress != nil && c.remaining > 0 {
		c.progress.DropInProgress(c.remaining)
	}

	c.remaining = 0
	c.releaseSuspend()
	c.leaveUnsuspendable()
}

// StopWaiting leaves the wait-for-interrupt mode. The CPU still finishes its
// budget, but no longer asks the engine to suspend once it is done.
func (c *CPU) StopWaiting() {
	c.waitForInterrupt = false
	c.releaseSuspend()
}

// Handle runs one cycle.
func (c *CPU) Handle(e timing.Event) error {
	switch e.(type) {
	case timing.TickEvent:
		c.Tick()
	default:
		log.Panicf("vcpu %s: cannot handle event of type %T", c.name, e)
	}

	return nil
}

// Tick executes up to ipc instructions. It returns true if the CPU made
// progress.
func (c *CPU) Tick() bool {
	if c.Halted() || c.remaining == 0 {
		return false
	}

	n := c.ipc
	if n > c.remaining {
		n = c.remaining
	}

	c.remaining -= n
	c.executed.Add(n)

	if c.progress != nil {
		c.progress.MoveInProgressToFinished(n)
	}

	if c.remaining > 0 {
		c.TickLater()
		return true
	}

	c.becomeIdle()

	return true
}

func (c *CPU) reportQueued(instructions uint64) {
	if c.progress == nil {
		return
	}

	c.progress.IncrementTotal(instructions)
	c.progress.IncrementInProgress(instructions)
}

func (c *CPU) becomeBusy() {
	c.releaseSuspend()

	if !c.unsuspendable {
		c.unsuspendable = true
		c.coordinator.EnterUnsuspendable(c.callerID)
	}
}

func (c *CPU) becomeIdle() {
	if c.waitForInterrupt && !c.suspending {
		c.suspending = true
		c.coordinator.RequestSuspendAll(c.callerID)
	}

	c.leaveUnsuspendable()
}

func (c *CPU) releaseSuspend() {
	if c.suspending {
		c.suspending = false
		c.coordinator.ReleaseSuspendAll(c.callerID)
	}
}

func (c *CPU) leaveUnsuspendable() {
	if c.unsuspendable {
		c.unsuspendable = false
		c.coordinator.ExitUnsuspendable(c.callerID)
	}
}
