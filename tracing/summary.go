package tracing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sarchlab/akitasync/datarecording"
)

// Summary aggregates a trace written by a DBTracer.
type Summary struct {
	Transitions map[string]int
	Decisions   map[string]int
	Sleeps      int
	SleepTime   time.Duration
	EndTime     float64
}

// Positions returns the recorded hook positions in alphabetical order.
func (s Summary) Positions() []string {
	positions := make([]string, 0, len(s.Transitions))
	for p := range s.Transitions {
		positions = append(positions, p)
	}

	sort.Strings(positions)

	return positions
}

// Summarize reads back the tables a DBTracer wrote.
func Summarize(
	ctx context.Context,
	reader datarecording.DataReader,
) (Summary, error) {
	reader.MapTable(transitionTable, transitionEntry{})
	reader.MapTable(sleepTable, sleepEntry{})

	s := Summary{
		Transitions: make(map[string]int),
		Decisions:   make(map[string]int),
	}

	transitions, err := reader.Query(ctx, transitionTable,
		datarecording.QueryParams{OrderBy: "Time"})
	if err != nil {
		return s, fmt.Errorf("read %s: %w", transitionTable, err)
	}

	for _, row := range transitions {
		e := row.(*transitionEntry)
		s.Transitions[e.Position]++

		if e.Decision != "" {
			s.Decisions[e.Decision]++
		}

		if e.Time > s.EndTime {
			s.EndTime = e.Time
		}
	}

	sleeps, err := reader.Query(ctx, sleepTable, datarecording.QueryParams{})
	if err != nil {
		return s, fmt.Errorf("read %s: %w", sleepTable, err)
	}

	for _, row := range sleeps {
		e := row.(*sleepEntry)
		s.Sleeps++
		s.SleepTime += time.Duration(e.Duration * float64(time.Second))
	}

	return s, nil
}
