package reporter

import (
	"fmt"
	"io"
	"math"

	"github.com/lizard045/Evolutionary-Computation/internal/ui"
)

// PrintDAG writes the task graph level by level with costs, outgoing transfer
// volumes and critical tasks marked.
func (r *Reporter) PrintDAG(w io.Writer) {
	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("Task Dependency Graph"))
	fmt.Fprintln(w, ui.Cyan("═══════════════════════"))
	fmt.Fprintln(w)

	volumes := r.volumes()
	for _, wave := range r.Bound.Waves {
		fmt.Fprintf(w, "%s 🌊 Level %d %s\n", ui.Cyan("──"), wave.Index+1, ui.Cyan("──────────────────────────────"))
		for _, id := range wave.TaskIDs {
			crit := " "
			if r.Bound.Tasks[id].IsCritical {
				crit = ui.BoldYellow("⚡")
			}
			fmt.Fprintf(w, "  %s [%s] %s\n", crit, ui.TaskLabel(id), ui.Dim(fmt.Sprintf("cost %s", formatTime(r.Graph.Cost(id)))))

			for _, succ := range r.Graph.Successors(id) {
				fmt.Fprintf(w, "      %s %s %s\n", ui.Dim("└──→"), ui.Magenta(fmt.Sprintf("t%d", succ)),
					ui.Dim(fmt.Sprintf("(%s)", formatTime(volumes[[2]int{id, succ}]))))
			}
		}
		fmt.Fprintln(w)
	}
}

// WriteDOT writes the task graph in Graphviz DOT format. Critical tasks and
// the tight edges between them are drawn in red.
func (r *Reporter) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph schedule {\n  rankdir=LR;\n  node [shape=box, style=rounded];"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for id := 0; id < r.Graph.TaskCount(); id++ {
		attrs := fmt.Sprintf(`label="t%d\n%s"`, id, formatTime(r.Graph.Cost(id)))
		if r.Bound.Tasks[id].IsCritical {
			attrs += `, style="rounded,bold", color=red`
		}
		if _, err := fmt.Fprintf(w, "  t%d [%s];\n", id, attrs); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for _, e := range r.Graph.Edges() {
		attrs := fmt.Sprintf(`label="%s"`, formatTime(e.Volume))
		if r.criticalEdge(e.From, e.To) {
			attrs += ", color=red, penwidth=2"
		}
		if _, err := fmt.Fprintf(w, "  t%d -> t%d [%s];\n", e.From, e.To, attrs); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

// criticalEdge reports whether both endpoints are critical and to starts as
// soon as from finishes.
func (r *Reporter) criticalEdge(from, to int) bool {
	a, b := r.Bound.Tasks[from], r.Bound.Tasks[to]
	return a.IsCritical && b.IsCritical && math.Abs(a.EF-b.ES) < 1e-9
}

func (r *Reporter) volumes() map[[2]int]float64 {
	out := make(map[[2]int]float64, r.Graph.EdgeCount())
	for _, e := range r.Graph.Edges() {
		out[[2]int{e.From, e.To}] = e.Volume
	}
	return out
}
