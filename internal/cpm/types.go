package cpm

// CPMResult holds the critical path analysis of a task graph.
type CPMResult struct {
	Tasks         []TaskSchedule // indexed by task id
	CriticalPath  []int          // critical task ids in topological order
	TotalDuration float64        // lower bound on any schedule's makespan
	Waves         []Wave         // topological levels
	TopoOrder     []int
}

// TaskSchedule holds the timing bounds for a single task.
type TaskSchedule struct {
	TaskID     int
	ES, EF     float64 // earliest start/finish
	LS, LF     float64 // latest start/finish
	Slack      float64
	IsCritical bool
	Wave       int // topological level
}

// Wave is a group of tasks on the same topological level.
type Wave struct {
	Index      int
	TaskIDs    []int
	IsCritical bool // true if wave contains critical path tasks
}
