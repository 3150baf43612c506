package schedule

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lizard045/Evolutionary-Computation/internal/graph"
)

// ErrInvalidSchedule is returned (wrapped) for schedules that cannot be
// evaluated against a graph.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Schedule is a candidate solution: the order in which tasks are committed to
// their processors and the processor each task runs on.
type Schedule struct {
	Name       string `json:"name,omitempty"`
	Order      []int  `json:"order"`
	Assignment []int  `json:"assignment"`
}

// Violation is a dependency whose predecessor is committed after its dependent.
type Violation struct {
	Task        int `json:"task"`
	Predecessor int `json:"predecessor"`
}

func (v Violation) String() string {
	return fmt.Sprintf("task %d scheduled before its predecessor %d", v.Task, v.Predecessor)
}

// Validate checks that Order is a permutation of the graph's task ids and that
// Assignment maps every task to a processor in range.
func (s *Schedule) Validate(g *graph.Graph) error {
	n := g.TaskCount()
	if len(s.Order) != n {
		return fmt.Errorf("%w: order has %d entries, graph has %d tasks", ErrInvalidSchedule, len(s.Order), n)
	}
	if len(s.Assignment) != n {
		return fmt.Errorf("%w: assignment has %d entries, graph has %d tasks", ErrInvalidSchedule, len(s.Assignment), n)
	}

	seen := make([]bool, n)
	for i, id := range s.Order {
		if id < 0 || id >= n {
			return fmt.Errorf("%w: order[%d] = %d is not a task id", ErrInvalidSchedule, i, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: task %d appears more than once in order", ErrInvalidSchedule, id)
		}
		seen[id] = true
	}

	p := g.Processors()
	for id, proc := range s.Assignment {
		if proc < 0 || proc >= p {
			return fmt.Errorf("%w: task %d assigned to processor %d, want [0,%d)", ErrInvalidSchedule, id, proc, p)
		}
	}
	return nil
}

// Violations lists every dependency that Order visits backwards. Order must
// already be a valid permutation.
func (s *Schedule) Violations(g *graph.Graph) []Violation {
	pos := s.positions()
	var out []Violation
	for _, id := range s.Order {
		for _, pred := range g.Predecessors(id) {
			if pos[pred.Task] > pos[id] {
				out = append(out, Violation{Task: id, Predecessor: pred.Task})
			}
		}
	}
	return out
}

// CheckPrecedence fails with ErrInvalidSchedule on the first dependency that
// Order visits backwards.
func (s *Schedule) CheckPrecedence(g *graph.Graph) error {
	if v := s.Violations(g); len(v) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSchedule, v[0])
	}
	return nil
}

func (s *Schedule) positions() []int {
	pos := make([]int, len(s.Order))
	for i, id := range s.Order {
		pos[id] = i
	}
	return pos
}

// Label returns the schedule name, or "solution <index+1>" when it has none.
func (s *Schedule) Label(index int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("solution %d", index+1)
}

// FromRandomKeys decodes random keys in [0,1] into a processor assignment by
// splitting the unit interval into equal buckets, one per processor. Key 1.0
// falls into the last bucket.
func FromRandomKeys(keys []float64, processors int) ([]int, error) {
	if processors <= 0 {
		return nil, fmt.Errorf("%w: processor count must be positive, got %d", ErrInvalidSchedule, processors)
	}
	assignment := make([]int, len(keys))
	for i, k := range keys {
		if math.IsNaN(k) || k < 0 || k > 1 {
			return nil, fmt.Errorf("%w: key %d = %v outside [0,1]", ErrInvalidSchedule, i, k)
		}
		proc := int(math.Floor(k * float64(processors)))
		if proc >= processors {
			proc = processors - 1
		}
		assignment[i] = proc
	}
	return assignment, nil
}

// OrderFromKeys returns task ids sorted by ascending key, ties broken by id.
func OrderFromKeys(keys []float64) ([]int, error) {
	order := make([]int, len(keys))
	for i, k := range keys {
		if math.IsNaN(k) {
			return nil, fmt.Errorf("%w: key %d is NaN", ErrInvalidSchedule, i)
		}
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]] < keys[order[b]]
	})
	return order, nil
}
