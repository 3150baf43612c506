package graph

import "errors"

// ErrInvalidGraph is returned (wrapped) for malformed task graphs: no
// processors or tasks, negative or non-finite costs and volumes, edge
// endpoints outside the task range, self loops, duplicate (from, to) edges
// and cycles.
var ErrInvalidGraph = errors.New("invalid graph")

// Edge is a dependency from one task to another carrying Volume units of data.
// Volume is charged as communication delay only when the two tasks run on
// different processors.
type Edge struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Volume float64 `json:"volume"`
}

// Pred is a predecessor entry in the dependency index.
type Pred struct {
	Task   int
	Volume float64
}

// Graph is an immutable task graph for a fixed processor count.
// Build it with New; the zero value is not usable.
type Graph struct {
	processors int
	costs      []float64
	edges      []Edge
	preds      [][]Pred // task -> incoming edges
	succs      [][]int  // task -> tasks it feeds
	roots      []int    // tasks with no predecessors
	leaves     []int    // tasks with no successors
}
