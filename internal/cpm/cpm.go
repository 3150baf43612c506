package cpm

import (
	"sort"

	"github.com/lizard045/Evolutionary-Computation/internal/graph"
)

// slackEpsilon absorbs float rounding when deciding whether a task is critical.
const slackEpsilon = 1e-9

// Analyze performs critical path method analysis on a task graph using compute
// costs only. Communication is free and processors are unlimited, so
// TotalDuration bounds the makespan of every schedule from below.
func Analyze(g *graph.Graph) *CPMResult {
	order := g.TopoOrder()
	n := g.TaskCount()

	result := &CPMResult{
		Tasks:     make([]TaskSchedule, n),
		TopoOrder: order,
	}
	for id := range result.Tasks {
		result.Tasks[id].TaskID = id
	}

	// Forward pass: compute ES and EF
	for _, id := range order {
		ts := &result.Tasks[id]
		es := 0.0
		for _, pred := range g.Predecessors(id) {
			if ef := result.Tasks[pred.Task].EF; ef > es {
				es = ef
			}
		}
		ts.ES = es
		ts.EF = es + g.Cost(id)
		if ts.EF > result.TotalDuration {
			result.TotalDuration = ts.EF
		}
	}

	// Backward pass: compute LS and LF in reverse topological order
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		ts := &result.Tasks[id]

		lf := result.TotalDuration
		for _, succ := range g.Successors(id) {
			if ls := result.Tasks[succ].LS; ls < lf {
				lf = ls
			}
		}
		ts.LF = lf
		ts.LS = lf - g.Cost(id)
		ts.Slack = ts.LS - ts.ES
		ts.IsCritical = ts.Slack < slackEpsilon
	}

	for _, id := range order {
		if result.Tasks[id].IsCritical {
			result.CriticalPath = append(result.CriticalPath, id)
		}
	}

	result.Waves = computeWaves(result, g)

	return result
}

// computeWaves groups tasks by topological level.
func computeWaves(result *CPMResult, g *graph.Graph) []Wave {
	levels := g.Levels()
	waves := make([]Wave, len(levels))
	for i, level := range levels {
		taskIDs := append([]int(nil), level...)

		hasCritical := false
		for _, id := range taskIDs {
			result.Tasks[id].Wave = i
			if result.Tasks[id].IsCritical {
				hasCritical = true
			}
		}

		// Sort critical tasks first within wave
		sort.SliceStable(taskIDs, func(a, b int) bool {
			aCrit := result.Tasks[taskIDs[a]].IsCritical
			bCrit := result.Tasks[taskIDs[b]].IsCritical
			return aCrit && !bCrit
		})

		waves[i] = Wave{
			Index:      i,
			TaskIDs:    taskIDs,
			IsCritical: hasCritical,
		}
	}
	return waves
}

// Ratio returns makespan divided by the critical path bound, or 0 when the
// bound is zero.
func (r *CPMResult) Ratio(makespan float64) float64 {
	if r.TotalDuration == 0 {
		return 0
	}
	return makespan / r.TotalDuration
}
