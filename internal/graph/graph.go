package graph

import (
	"fmt"
	"math"
	"sort"
)

// New validates the inputs and builds an immutable Graph with its dependency
// index. The slices are copied, so callers may reuse them.
func New(processors int, costs []float64, edges []Edge) (*Graph, error) {
	if processors <= 0 {
		return nil, fmt.Errorf("%w: processor count must be positive, got %d", ErrInvalidGraph, processors)
	}
	n := len(costs)
	if n == 0 {
		return nil, fmt.Errorf("%w: graph has no tasks", ErrInvalidGraph)
	}
	for id, c := range costs {
		if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: task %d has invalid cost %v", ErrInvalidGraph, id, c)
		}
	}

	g := &Graph{
		processors: processors,
		costs:      append([]float64(nil), costs...),
		edges:      append([]Edge(nil), edges...),
		preds:      make([][]Pred, n),
		succs:      make([][]int, n),
	}

	seen := make(map[[2]int]bool, len(edges))
	for i, e := range edges {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			return nil, fmt.Errorf("%w: edge %d (%d -> %d) references a task outside [0,%d)", ErrInvalidGraph, i, e.From, e.To, n)
		}
		if e.From == e.To {
			return nil, fmt.Errorf("%w: edge %d is a self loop on task %d", ErrInvalidGraph, i, e.From)
		}
		if e.Volume < 0 || math.IsNaN(e.Volume) || math.IsInf(e.Volume, 0) {
			return nil, fmt.Errorf("%w: edge %d (%d -> %d) has invalid volume %v", ErrInvalidGraph, i, e.From, e.To, e.Volume)
		}
		key := [2]int{e.From, e.To}
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate edge %d -> %d", ErrInvalidGraph, e.From, e.To)
		}
		seen[key] = true

		g.preds[e.To] = append(g.preds[e.To], Pred{Task: e.From, Volume: e.Volume})
		g.succs[e.From] = append(g.succs[e.From], e.To)
	}

	// Sort adjacency lists for deterministic ordering
	for id := 0; id < n; id++ {
		sort.Slice(g.preds[id], func(a, b int) bool { return g.preds[id][a].Task < g.preds[id][b].Task })
		sort.Ints(g.succs[id])
		if len(g.preds[id]) == 0 {
			g.roots = append(g.roots, id)
		}
		if len(g.succs[id]) == 0 {
			g.leaves = append(g.leaves, id)
		}
	}

	if cycle := g.DetectCycle(); cycle != nil {
		return nil, fmt.Errorf("%w: dependency cycle detected: %v", ErrInvalidGraph, cycle)
	}

	return g, nil
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *Graph) DetectCycle() []int {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	n := len(g.succs)
	color := make([]int, n)
	parent := make([]int, n)

	var dfs func(node int) []int
	dfs = func(node int) []int {
		color[node] = gray
		for _, next := range g.succs[node] {
			if color[next] == gray {
				cycle := []int{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				// Reverse to get forward order
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for id := 0; id < n; id++ {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// TaskCount returns the number of tasks in the graph.
func (g *Graph) TaskCount() int {
	return len(g.costs)
}

// Processors returns the processor count of the problem instance.
func (g *Graph) Processors() int {
	return g.processors
}

// Cost returns the computation cost of a task.
func (g *Graph) Cost(task int) float64 {
	return g.costs[task]
}

// Costs returns a copy of all computation costs indexed by task id.
func (g *Graph) Costs() []float64 {
	return append([]float64(nil), g.costs...)
}

// Edges returns a copy of the edge list in input order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// EdgeCount returns the number of dependency edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Predecessors returns the incoming edges of a task sorted by predecessor id.
// The returned slice is shared and must not be modified.
func (g *Graph) Predecessors(task int) []Pred {
	return g.preds[task]
}

// Successors returns the tasks fed by task, sorted by id.
// The returned slice is shared and must not be modified.
func (g *Graph) Successors(task int) []int {
	return g.succs[task]
}

// Roots returns tasks with no predecessors.
func (g *Graph) Roots() []int {
	return append([]int(nil), g.roots...)
}

// Leaves returns tasks with no successors.
func (g *Graph) Leaves() []int {
	return append([]int(nil), g.leaves...)
}

// TopoOrder returns a topological order using Kahn's algorithm. Roots are
// taken in id order and newly ready successors are queued in id order.
func (g *Graph) TopoOrder() []int {
	n := g.TaskCount()
	inDegree := make([]int, n)
	for id := range inDegree {
		inDegree[id] = len(g.preds[id])
	}

	queue := g.Roots()
	order := make([]int, 0, n)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, succ := range g.succs[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}
	return order
}

// Levels groups tasks into topological generations: level 0 holds the roots,
// and every other task sits one level below its deepest predecessor.
func (g *Graph) Levels() [][]int {
	level := make([]int, g.TaskCount())
	maxLevel := 0
	for _, id := range g.TopoOrder() {
		for _, p := range g.preds[id] {
			if level[p.Task]+1 > level[id] {
				level[id] = level[p.Task] + 1
			}
		}
		if level[id] > maxLevel {
			maxLevel = level[id]
		}
	}

	levels := make([][]int, maxLevel+1)
	for id, l := range level {
		levels[l] = append(levels[l], id)
	}
	return levels
}
