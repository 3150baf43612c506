package evaluator

import (
	"sort"

	"github.com/lizard045/Evolutionary-Computation/internal/schedule"
)

// Result is the timing of one evaluated schedule. It is fully populated for
// every task id and is never modified after Evaluate returns it.
type Result struct {
	Name       string               `json:"name"`
	Order      []int                `json:"order"`
	Assignment []int                `json:"assignment"`
	Processors int                  `json:"processors"`
	StartTimes []float64            `json:"start_times"`
	EndTimes   []float64            `json:"end_times"`
	Makespan   float64              `json:"makespan"`
	CommDelay  float64              `json:"comm_delay"`           // total volume charged on cross-processor edges
	Violations []schedule.Violation `json:"violations,omitempty"` // only set in lenient mode
}

// Slot is one task placed on a processor timeline.
type Slot struct {
	Task  int
	Start float64
	End   float64
}

// Timeline returns the tasks assigned to processor sorted by start time, ties
// by end time then id.
func (r *Result) Timeline(processor int) []Slot {
	var slots []Slot
	for id, p := range r.Assignment {
		if p == processor {
			slots = append(slots, Slot{Task: id, Start: r.StartTimes[id], End: r.EndTimes[id]})
		}
	}
	sort.Slice(slots, func(a, b int) bool {
		if slots[a].Start != slots[b].Start {
			return slots[a].Start < slots[b].Start
		}
		if slots[a].End != slots[b].End {
			return slots[a].End < slots[b].End
		}
		return slots[a].Task < slots[b].Task
	})
	return slots
}

// BusyTime returns the total compute time spent on processor.
func (r *Result) BusyTime(processor int) float64 {
	busy := 0.0
	for id, p := range r.Assignment {
		if p == processor {
			busy += r.EndTimes[id] - r.StartTimes[id]
		}
	}
	return busy
}

// Utilization returns busy time divided by makespan for processor, or 0 when
// the makespan is zero.
func (r *Result) Utilization(processor int) float64 {
	if r.Makespan == 0 {
		return 0
	}
	return r.BusyTime(processor) / r.Makespan
}

// Best returns the index of the result with the smallest makespan, the first
// one on ties, or -1 for an empty slice.
func Best(results []*Result) int {
	best := -1
	for i, r := range results {
		if best < 0 || r.Makespan < results[best].Makespan {
			best = i
		}
	}
	return best
}
