package tracing

import (
	"sync"
	"time"

	"github.com/sarchlab/akitasync/sim/hooking"
	"github.com/sarchlab/akitasync/suspend"
)

// SleepTimeTracer accumulates the wall-clock time the engine spends asleep
// and counts how often each decision is taken.
type SleepTimeTracer struct {
	lock          sync.Mutex
	clock         func() time.Time
	sleepStart    time.Time
	inSleep       bool
	numSleeps     uint64
	totalSleep    time.Duration
	decisionCount map[suspend.Decision]uint64
}

// NewSleepTimeTracer creates a new SleepTimeTracer
func NewSleepTimeTracer() *SleepTimeTracer {
	return &SleepTimeTracer{
		clock:         time.Now,
		decisionCount: make(map[suspend.Decision]uint64),
	}
}

// Trace updates the counters.
func (t *SleepTimeTracer) Trace(pos *hooking.HookPos, rec suspend.Record) {
	t.lock.Lock()
	defer t.lock.Unlock()

	switch pos {
	case suspend.HookPosDecision:
		t.decisionCount[rec.Decision]++
	case suspend.HookPosSleep:
		t.inSleep = true
		t.sleepStart = t.clock()
		t.numSleeps++
	case suspend.HookPosWake:
		if t.inSleep {
			t.totalSleep += t.clock().Sub(t.sleepStart)
			t.inSleep = false
		}
	}
}

// TotalSleepTime returns the wall-clock time spent asleep, not counting a
// sleep that has not ended yet.
func (t *SleepTimeTracer) TotalSleepTime() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.totalSleep
}

// NumSleeps returns how many times the engine went to sleep.
func (t *SleepTimeTracer) NumSleeps() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.numSleeps
}

// DecisionCount returns how many times a decision was taken.
func (t *SleepTimeTracer) DecisionCount(d suspend.Decision) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.decisionCount[d]
}
