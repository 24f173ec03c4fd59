package monitoring

import (
	"encoding/json"
	"sync"
	"time"
)

// A ProgressBar tracks work that is known, started, and done. It is updated
// on the engine goroutine and read by HTTP handlers.
type ProgressBar struct {
	lock       sync.Mutex
	id         string
	name       string
	startTime  time.Time
	total      uint64
	finished   uint64
	inProgress uint64
}

// ProgressSnapshot is a consistent copy of a ProgressBar.
type ProgressSnapshot struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func newProgressBar(id, name string, total uint64) *ProgressBar {
	return &ProgressBar{
		id:        id,
		name:      name,
		startTime: time.Now(),
		total:     total,
	}
}

// ID returns the ID of the bar.
func (b *ProgressBar) ID() string {
	return b.id
}

// IncrementTotal grows the amount of known work.
func (b *ProgressBar) IncrementTotal(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.total += amount
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.inProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount. The in-progress
// count never drops below zero.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if amount > b.inProgress {
		b.inProgress = 0
	} else {
		b.inProgress -= amount
	}

	b.finished += amount
}

// DropInProgress forgets in-progress work that will never finish.
func (b *ProgressBar) DropInProgress(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if amount > b.inProgress {
		amount = b.inProgress
	}

	b.inProgress -= amount
	b.total -= min(amount, b.total)
}

// Snapshot returns a copy of the bar taken under its lock.
func (b *ProgressBar) Snapshot() ProgressSnapshot {
	b.lock.Lock()
	defer b.lock.Unlock()

	return ProgressSnapshot{
		ID:         b.id,
		Name:       b.name,
		StartTime:  b.startTime,
		Total:      b.total,
		Finished:   b.finished,
		InProgress: b.inProgress,
	}
}

// MarshalJSON encodes a snapshot of the bar.
func (b *ProgressBar) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Snapshot())
}
