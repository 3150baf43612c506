package graph

import (
	"errors"
	"testing"
)

func TestNew_SimpleDAG(t *testing.T) {
	// 0 -> 1 -> 3
	// 0 -> 2 -> 3
	g, err := New(2, []float64{1, 2, 3, 4}, []Edge{
		{0, 1, 5}, {0, 2, 5}, {1, 3, 0}, {2, 3, 7},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.TaskCount() != 4 {
		t.Errorf("expected 4 tasks, got %d", g.TaskCount())
	}
	if g.Processors() != 2 {
		t.Errorf("expected 2 processors, got %d", g.Processors())
	}

	if roots := g.Roots(); len(roots) != 1 || roots[0] != 0 {
		t.Errorf("expected roots=[0], got %v", roots)
	}
	if leaves := g.Leaves(); len(leaves) != 1 || leaves[0] != 3 {
		t.Errorf("expected leaves=[3], got %v", leaves)
	}

	preds := g.Predecessors(3)
	if len(preds) != 2 {
		t.Fatalf("expected 3 to have 2 predecessors, got %v", preds)
	}
	if preds[0] != (Pred{Task: 1, Volume: 0}) || preds[1] != (Pred{Task: 2, Volume: 7}) {
		t.Errorf("unexpected predecessor index for 3: %v", preds)
	}
	if succ := g.Successors(0); len(succ) != 2 {
		t.Errorf("expected 0 to feed 2 tasks, got %v", succ)
	}
}

func TestNew_SingleTask(t *testing.T) {
	g, err := New(1, []float64{5}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if roots := g.Roots(); len(roots) != 1 || roots[0] != 0 {
		t.Errorf("expected roots=[0], got %v", roots)
	}
	if leaves := g.Leaves(); len(leaves) != 1 || leaves[0] != 0 {
		t.Errorf("expected leaves=[0], got %v", leaves)
	}
}

func TestNew_CycleDetection(t *testing.T) {
	// 0 -> 1 -> 2 -> 0
	_, err := New(1, []float64{1, 1, 1}, []Edge{{0, 1, 0}, {1, 2, 0}, {2, 0, 0}})
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	if !errors.Is(err, ErrInvalidGraph) {
		t.Errorf("expected ErrInvalidGraph, got %v", err)
	}
	t.Logf("cycle error (expected): %v", err)
}

func TestNew_InvalidInputs(t *testing.T) {
	tests := []struct {
		name       string
		processors int
		costs      []float64
		edges      []Edge
	}{
		{"no processors", 0, []float64{1}, nil},
		{"no tasks", 2, nil, nil},
		{"negative cost", 2, []float64{1, -1}, nil},
		{"edge out of range", 2, []float64{1, 1}, []Edge{{0, 2, 0}}},
		{"negative endpoint", 2, []float64{1, 1}, []Edge{{-1, 1, 0}}},
		{"self loop", 2, []float64{1, 1}, []Edge{{1, 1, 0}}},
		{"negative volume", 2, []float64{1, 1}, []Edge{{0, 1, -3}}},
		{"duplicate edge", 2, []float64{1, 1}, []Edge{{0, 1, 1}, {0, 1, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.processors, tt.costs, tt.edges)
			if !errors.Is(err, ErrInvalidGraph) {
				t.Errorf("expected ErrInvalidGraph, got %v", err)
			}
		})
	}
}

func TestNew_CopiesInputs(t *testing.T) {
	costs := []float64{1, 2}
	edges := []Edge{{0, 1, 3}}
	g, err := New(1, costs, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	costs[0] = 100
	edges[0].Volume = 100
	if g.Cost(0) != 1 {
		t.Errorf("graph cost changed with caller slice: %v", g.Cost(0))
	}
	if g.Edges()[0].Volume != 3 {
		t.Errorf("graph edge changed with caller slice: %v", g.Edges()[0])
	}
}

func TestDetectCycle_NoCycle(t *testing.T) {
	g := &Graph{succs: [][]int{{1}, nil}}
	if cycle := g.DetectCycle(); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestDetectCycle_WithCycle(t *testing.T) {
	g := &Graph{succs: [][]int{{1}, {2}, {0}}}

	cycle := g.DetectCycle()
	if cycle == nil {
		t.Fatal("expected cycle, got nil")
	}
	if len(cycle) < 3 {
		t.Errorf("expected cycle of length >= 3, got %v", cycle)
	}
	t.Logf("detected cycle: %v", cycle)
}

func TestTopoOrder_RespectsEdges(t *testing.T) {
	g := Sample()
	order := g.TopoOrder()
	if len(order) != g.TaskCount() {
		t.Fatalf("expected %d tasks in order, got %d", g.TaskCount(), len(order))
	}

	pos := make([]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, e := range g.Edges() {
		if pos[e.From] >= pos[e.To] {
			t.Errorf("edge %d -> %d violated by order %v", e.From, e.To, order)
		}
	}
}

func TestLevels_LinearChain(t *testing.T) {
	g, err := New(1, []float64{1, 1, 1}, []Edge{{0, 1, 0}, {1, 2, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	levels := g.Levels()
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %v", levels)
	}
	for i, l := range levels {
		if len(l) != 1 || l[0] != i {
			t.Errorf("level %d: expected [%d], got %v", i, i, l)
		}
	}
}

func TestLevels_Sample(t *testing.T) {
	levels := Sample().Levels()
	if len(levels[0]) != 1 || levels[0][0] != 0 {
		t.Errorf("expected level 0 = [0], got %v", levels[0])
	}
	last := levels[len(levels)-1]
	if len(last) != 1 || last[0] != 19 {
		t.Errorf("expected exit task 19 alone on the last level, got %v", last)
	}
}

func TestSample(t *testing.T) {
	g := Sample()
	if g.TaskCount() != 20 {
		t.Errorf("expected 20 tasks, got %d", g.TaskCount())
	}
	if g.EdgeCount() != 35 {
		t.Errorf("expected 35 edges, got %d", g.EdgeCount())
	}
	if g.Processors() != 4 {
		t.Errorf("expected 4 processors, got %d", g.Processors())
	}
}
