package tracing

import (
	"sync"
	"time"

	"github.com/sarchlab/akitasync/datarecording"
	"github.com/sarchlab/akitasync/sim/hooking"
	"github.com/sarchlab/akitasync/sim/id"
	"github.com/sarchlab/akitasync/suspend"
	"github.com/tebeka/atexit"
)

const (
	transitionTable = "suspend_transitions"
	sleepTable      = "suspend_sleeps"
)

type transitionEntry struct {
	ID       string
	Time     float64
	Position string
	Caller   uint64
	Channel  string
	Count    uint64
	Decision string
}

type sleepEntry struct {
	ID        string
	Time      float64
	WallStart int64
	WallEnd   int64
	Duration  float64
}

// DBTracer stores coordinator transitions and sleep intervals into a
// DataRecorder.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder
	clock   func() time.Time

	sleepStart  time.Time
	sleepVTime  float64
	inSleep     bool
	terminated  bool
	transitions uint64
}

// NewDBTracer creates a new DBTracer and the tables it writes to.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	dataRecorder.CreateTable(transitionTable, transitionEntry{})
	dataRecorder.CreateTable(sleepTable, sleepEntry{})

	t := &DBTracer{
		backend: dataRecorder,
		clock:   time.Now,
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// Trace records one transition.
func (t *DBTracer) Trace(pos *hooking.HookPos, rec suspend.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	entry := transitionEntry{
		ID:       id.Generate(),
		Time:     float64(rec.Time),
		Position: pos.Name,
		Caller:   uint64(rec.Caller),
		Channel:  rec.Channel,
		Count:    uint64(rec.Count),
	}

	if pos == suspend.HookPosDecision {
		entry.Decision = rec.Decision.String()
	}

	t.backend.InsertData(transitionTable, entry)
	t.transitions++

	switch pos {
	case suspend.HookPosSleep:
		t.inSleep = true
		t.sleepStart = t.clock()
		t.sleepVTime = float64(rec.Time)
	case suspend.HookPosWake:
		if t.inSleep {
			t.writeSleep(t.clock())
		}
	}
}

func (t *DBTracer) writeSleep(end time.Time) {
	t.backend.InsertData(sleepTable, sleepEntry{
		ID:        id.Generate(),
		Time:      t.sleepVTime,
		WallStart: t.sleepStart.UnixNano(),
		WallEnd:   end.UnixNano(),
		Duration:  end.Sub(t.sleepStart).Seconds(),
	})
	t.inSleep = false
}

// NumTransitions returns the number of transitions recorded.
func (t *DBTracer) NumTransitions() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.transitions
}

// Terminate closes an open sleep interval and flushes the backend. Later
// transitions are dropped.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	if t.inSleep {
		t.writeSleep(t.clock())
	}

	t.terminated = true
	t.backend.Flush()
}
