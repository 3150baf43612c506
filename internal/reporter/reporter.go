package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lizard045/Evolutionary-Computation/internal/cpm"
	"github.com/lizard045/Evolutionary-Computation/internal/evaluator"
	"github.com/lizard045/Evolutionary-Computation/internal/graph"
	"github.com/lizard045/Evolutionary-Computation/internal/ui"
)

// Reporter renders evaluated schedules for terminals and files.
type Reporter struct {
	Graph   *graph.Graph
	Results []*evaluator.Result
	Bound   *cpm.CPMResult
}

// New creates a Reporter and runs the critical path analysis of g.
func New(g *graph.Graph, results []*evaluator.Result) *Reporter {
	return &Reporter{
		Graph:   g,
		Results: results,
		Bound:   cpm.Analyze(g),
	}
}

// Best returns the index of the best result, or -1 when there are none.
func (r *Reporter) Best() int {
	return evaluator.Best(r.Results)
}

// PrintSummary writes one line per candidate with makespan, ratio to the
// critical path bound and communication delay. The output is also returned
// as a string so it can be reused as context for narrative summaries.
func (r *Reporter) PrintSummary(w io.Writer) string {
	var b strings.Builder
	mw := io.MultiWriter(w, &b)

	fmt.Fprintf(mw, "\n🎯 %s\n", ui.BoldCyan("Schedule Evaluation"))
	fmt.Fprintf(mw, "%s\n", ui.Cyan("═══════════════════"))
	fmt.Fprintf(mw, "Tasks:       %d (%d edges)\n", r.Graph.TaskCount(), r.Graph.EdgeCount())
	fmt.Fprintf(mw, "Processors:  %d\n", r.Graph.Processors())
	fmt.Fprintf(mw, "Bound:       %s %s\n\n",
		ui.Bold(formatTime(r.Bound.TotalDuration)), ui.Dim("(critical path, no transfers)"))

	if len(r.Results) == 0 {
		fmt.Fprintf(mw, "%s\n", ui.Dim("No candidates evaluated."))
		return b.String()
	}

	best := r.Best()
	nameWidth := r.nameWidth()
	for i, res := range r.Results {
		marker := "  "
		makespan := ui.Bold(formatTime(res.Makespan))
		if i == best {
			marker = ui.BoldGreen("★ ")
			makespan = ui.BoldGreen(formatTime(res.Makespan))
		}
		fmt.Fprintf(mw, "  %s%-*s  makespan %s  %s  %s",
			marker, nameWidth, res.Name, makespan,
			ui.Dim(fmt.Sprintf("x%.2f bound", r.Bound.Ratio(res.Makespan))),
			ui.Dim(fmt.Sprintf("comm %s", formatTime(res.CommDelay))))
		if len(res.Violations) > 0 {
			fmt.Fprintf(mw, "  %s", ui.Yellow(fmt.Sprintf("(%d precedence violations)", len(res.Violations))))
		}
		fmt.Fprintln(mw)
	}

	fmt.Fprintf(mw, "%s\n", ui.Cyan("───────────────────"))
	fmt.Fprintf(mw, "Best:        %s with makespan %s\n",
		ui.BoldGreen(r.Results[best].Name), ui.Bold(formatTime(r.Results[best].Makespan)))

	return b.String()
}

// PrintBound writes the critical path analysis of the problem graph.
func (r *Reporter) PrintBound(w io.Writer) {
	fmt.Fprintf(w, "\n⚡ %s\n", ui.BoldCyan("Critical Path"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("═════════════"))
	fmt.Fprintf(w, "Lower bound: %s\n", ui.Bold(formatTime(r.Bound.TotalDuration)))

	labels := make([]string, len(r.Bound.CriticalPath))
	for i, id := range r.Bound.CriticalPath {
		labels[i] = fmt.Sprintf("t%d", id)
	}
	fmt.Fprintf(w, "Path:        %s\n\n", ui.BoldYellow(strings.Join(labels, " → ")))

	fmt.Fprintf(w, "  %-6s %8s %8s %8s %8s %8s\n", "task", "ES", "EF", "LS", "LF", "slack")
	for _, ts := range r.Bound.Tasks {
		critical := " "
		if ts.IsCritical {
			critical = ui.BoldYellow("⚡")
		}
		fmt.Fprintf(w, "  %-6s %8.2f %8.2f %8.2f %8.2f %8.2f %s\n",
			fmt.Sprintf("t%d", ts.TaskID), ts.ES, ts.EF, ts.LS, ts.LF, ts.Slack, critical)
	}
}

// WriteText writes the plain text export: for each candidate its makespan and
// a task/start/end table in task id order, followed by the total execution
// time of the evaluation.
func (r *Reporter) WriteText(w io.Writer, elapsed time.Duration) error {
	for _, res := range r.Results {
		if _, err := fmt.Fprintf(w, "%s:\nmakespan: %.2f\ntask\tstart\tend\n", res.Name, res.Makespan); err != nil {
			return err
		}
		for id := range res.StartTimes {
			if _, err := fmt.Fprintf(w, "%d\t%.2f\t%.2f\n", id, res.StartTimes[id], res.EndTimes[id]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "total execution time: %.6f s\n", elapsed.Seconds())
	return err
}

// JSON returns machine-readable results.
func (r *Reporter) JSON() ([]byte, error) {
	type problem struct {
		Tasks        int     `json:"tasks"`
		Edges        int     `json:"edges"`
		Processors   int     `json:"processors"`
		Bound        float64 `json:"bound"`
		CriticalPath []int   `json:"critical_path"`
	}

	type output struct {
		Problem problem             `json:"problem"`
		Best    int                 `json:"best"`
		Results []*evaluator.Result `json:"results"`
	}

	o := output{
		Problem: problem{
			Tasks:        r.Graph.TaskCount(),
			Edges:        r.Graph.EdgeCount(),
			Processors:   r.Graph.Processors(),
			Bound:        r.Bound.TotalDuration,
			CriticalPath: r.Bound.CriticalPath,
		},
		Best:    r.Best(),
		Results: r.Results,
	}
	if o.Results == nil {
		o.Results = []*evaluator.Result{}
	}

	return json.MarshalIndent(o, "", "  ")
}

func (r *Reporter) nameWidth() int {
	width := 0
	for _, res := range r.Results {
		if len(res.Name) > width {
			width = len(res.Name)
		}
	}
	return width
}

// formatTime prints whole values without decimals and anything else with two.
func formatTime(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
