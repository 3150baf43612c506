package schedule

import (
	"github.com/lizard045/Evolutionary-Computation/internal/cpm"
	"github.com/lizard045/Evolutionary-Computation/internal/graph"
)

// Baselines returns simple list-scheduling candidates for g, all committed in
// a topological order:
//
//   - serial: every task on P0
//   - round robin: tasks dealt to processors in topological order
//   - level spread: each topological level dealt across processors
//   - critical chain: critical tasks on P0, the rest dealt across the others
func Baselines(g *graph.Graph) []Schedule {
	n, p := g.TaskCount(), g.Processors()
	topo := g.TopoOrder()

	serial := Schedule{Name: "serial", Order: topo, Assignment: make([]int, n)}

	roundRobin := Schedule{Name: "round robin", Order: topo, Assignment: make([]int, n)}
	for i, id := range topo {
		roundRobin.Assignment[id] = i % p
	}

	spread := Schedule{Name: "level spread", Assignment: make([]int, n)}
	for _, level := range g.Levels() {
		for i, id := range level {
			spread.Order = append(spread.Order, id)
			spread.Assignment[id] = i % p
		}
	}

	chain := Schedule{Name: "critical chain", Order: topo, Assignment: make([]int, n)}
	bound := cpm.Analyze(g)
	next := 0
	for _, id := range topo {
		if bound.Tasks[id].IsCritical || p == 1 {
			continue
		}
		chain.Assignment[id] = 1 + next%(p-1)
		next++
	}

	return []Schedule{serial, roundRobin, spread, chain}
}
