package suspend

import (
	"github.com/sarchlab/akitasync/sim/timing"
)

// CallerTeller reports which handler the engine is dispatching.
type CallerTeller interface {
	CurrentCaller() timing.CallerID
}

// Shim is what device models and bindings use. It resolves the current caller
// from the engine so that callers do not pass their own identity.
type Shim struct {
	coordinator *Coordinator
	callers     CallerTeller
}

// NewShim creates a Shim for the coordinator, taking caller identities from
// callers.
func NewShim(coordinator *Coordinator, callers CallerTeller) *Shim {
	return &Shim{
		coordinator: coordinator,
		callers:     callers,
	}
}

// Coordinator returns the coordinator behind the shim.
func (s *Shim) Coordinator() *Coordinator {
	return s.coordinator
}

// SuspendAll votes for the engine to sleep once visible work is drained.
func (s *Shim) SuspendAll() {
	s.coordinator.RequestSuspendAll(s.callers.CurrentCaller())
}

// UnsuspendAll withdraws the current caller's suspend-all vote.
func (s *Shim) UnsuspendAll() {
	s.coordinator.ReleaseSuspendAll(s.callers.CurrentCaller())
}

// MarkUnsuspendable keeps the engine from sleeping until MarkSuspendable is
// called by the same caller.
func (s *Shim) MarkUnsuspendable() {
	s.coordinator.EnterUnsuspendable(s.callers.CurrentCaller())
}

// MarkSuspendable ends the current caller's unsuspendable region.
func (s *Shim) MarkSuspendable() {
	s.coordinator.ExitUnsuspendable(s.callers.CurrentCaller())
}

// AsyncWake wakes the engine. It is safe from any goroutine.
func (s *Shim) AsyncWake() bool {
	return s.coordinator.AsyncWakeup()
}

// AttachSuspendingChannel is safe from any goroutine.
func (s *Shim) AttachSuspendingChannel(ch Channel) bool {
	return s.coordinator.AttachSuspendingChannel(ch)
}

// DetachSuspendingChannel is safe from any goroutine.
func (s *Shim) DetachSuspendingChannel(ch Channel) bool {
	return s.coordinator.DetachSuspendingChannel(ch)
}
