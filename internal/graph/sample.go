package graph

// sampleCosts and sampleEdges describe the 20-task, 4-processor reference
// instance used when no problem file is given. Tasks 0 and 19 are zero-cost
// entry and exit sentinels.
var sampleCosts = []float64{
	0, 80, 40, 40, 40, 40, 40, 60, 30, 30,
	30, 30, 40, 20, 20, 20, 20, 10, 10, 0,
}

var sampleEdges = []Edge{
	{0, 1, 0},
	{1, 2, 120}, {1, 3, 120}, {1, 4, 120}, {1, 5, 120}, {1, 6, 120}, {1, 7, 120},
	{2, 19, 0},
	{3, 7, 80}, {3, 8, 80},
	{4, 9, 80},
	{5, 10, 80},
	{6, 11, 80},
	{7, 8, 120}, {7, 9, 120}, {7, 10, 120}, {7, 11, 120}, {7, 12, 120},
	{8, 19, 0},
	{9, 12, 80}, {9, 13, 80},
	{10, 14, 80},
	{11, 15, 80},
	{12, 13, 120}, {12, 14, 120}, {12, 15, 120}, {12, 16, 120},
	{13, 19, 0},
	{14, 16, 80}, {14, 17, 80},
	{15, 18, 80},
	{16, 17, 120}, {16, 18, 120},
	{17, 19, 0},
	{18, 19, 0},
}

// SampleProcessors is the processor count of the reference instance.
const SampleProcessors = 4

// Sample returns the built-in reference instance.
func Sample() *Graph {
	g, err := New(SampleProcessors, sampleCosts, sampleEdges)
	if err != nil {
		panic(err)
	}
	return g
}
