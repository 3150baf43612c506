package evaluator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lizard045/Evolutionary-Computation/internal/graph"
	"github.com/lizard045/Evolutionary-Computation/internal/schedule"
)

// Options tunes a single evaluation.
type Options struct {
	// Lenient evaluates orders that visit a task before one of its
	// predecessors instead of rejecting them. The unvisited predecessor then
	// contributes an end time of 0 and the dependency is recorded in
	// Result.Violations.
	Lenient bool
}

// Evaluate computes start and end times for every task of g under s, charging
// transfer volume as delay on edges whose endpoints run on different
// processors. Tasks are committed strictly in s.Order.
func Evaluate(g *graph.Graph, s *schedule.Schedule, opts Options) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", graph.ErrInvalidGraph)
	}
	if err := s.Validate(g); err != nil {
		return nil, err
	}

	var violations []schedule.Violation
	if opts.Lenient {
		violations = s.Violations(g)
	} else if err := s.CheckPrecedence(g); err != nil {
		return nil, err
	}

	n := g.TaskCount()
	finish := make([]float64, g.Processors())
	start := make([]float64, n)
	end := make([]float64, n)
	comm := 0.0

	for _, id := range s.Order {
		proc := s.Assignment[id]

		// Earliest time all inputs have arrived
		ready := 0.0
		for _, pred := range g.Predecessors(id) {
			arrival := end[pred.Task]
			if s.Assignment[pred.Task] != proc && pred.Volume > 0 {
				arrival += pred.Volume
				comm += pred.Volume
			}
			if arrival > ready {
				ready = arrival
			}
		}

		st := ready
		if finish[proc] > st {
			st = finish[proc]
		}
		start[id] = st
		end[id] = st + g.Cost(id)
		finish[proc] = end[id]
	}

	makespan := 0.0
	for _, e := range end {
		if e > makespan {
			makespan = e
		}
	}

	return &Result{
		Name:       s.Name,
		Order:      append([]int(nil), s.Order...),
		Assignment: append([]int(nil), s.Assignment...),
		Processors: g.Processors(),
		StartTimes: start,
		EndTimes:   end,
		Makespan:   makespan,
		CommDelay:  comm,
		Violations: violations,
	}, nil
}

// EvaluateAll evaluates independent candidates concurrently with at most
// parallelism workers (unlimited when <= 0). Results keep the input order and
// unnamed candidates are labelled "solution <n>". The first failure cancels
// the remaining work.
func EvaluateAll(ctx context.Context, g *graph.Graph, schedules []schedule.Schedule, opts Options, parallelism int) ([]*Result, error) {
	results := make([]*Result, len(schedules))

	eg, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		eg.SetLimit(parallelism)
	}

	for i := range schedules {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := schedules[i]
			s.Name = s.Label(i)
			r, err := Evaluate(g, &s, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
