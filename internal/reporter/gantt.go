package reporter

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/lizard045/Evolutionary-Computation/internal/evaluator"
	"github.com/lizard045/Evolutionary-Computation/internal/ui"
)

const (
	minGanttCols = 20
	ganttMargin  = 14 // label, borders and utilization column
)

// PrintGantt draws one row per processor for res, scaled to fit width
// terminal columns. Zero-duration tasks are not drawn.
func (r *Reporter) PrintGantt(w io.Writer, res *evaluator.Result, width int) {
	fmt.Fprintf(w, "\n📊 %s %s\n", ui.BoldCyan("Gantt:"), ui.Bold(res.Name))
	fmt.Fprintf(w, "%s\n", ui.Cyan("══════════════════"))
	fmt.Fprintf(w, "Makespan:  %s\n\n", ui.Bold(formatTime(res.Makespan)))

	if res.Makespan <= 0 {
		fmt.Fprintf(w, "%s\n", ui.Dim("All tasks have zero duration."))
		return
	}

	cols := width - ganttMargin
	if cols < minGanttCols {
		cols = minGanttCols
	}
	scale := float64(cols) / res.Makespan

	labelWidth := len(fmt.Sprintf("P%d", res.Processors-1))
	for p := 0; p < res.Processors; p++ {
		pad := strings.Repeat(" ", labelWidth-len(fmt.Sprintf("P%d", p)))
		fmt.Fprintf(w, "%s%s │%s│ %s\n",
			ui.ProcessorLabel(p), pad,
			ganttRow(res.Timeline(p), scale, cols),
			ui.Dim(fmt.Sprintf("%3.0f%%", res.Utilization(p)*100)))
	}

	indent := strings.Repeat(" ", labelWidth+1)
	end := formatTime(res.Makespan)
	gap := cols + 1 - len(end)
	if gap < 1 {
		gap = 1
	}
	fmt.Fprintf(w, "%s└%s┘\n", indent, strings.Repeat("─", cols))
	fmt.Fprintf(w, "%s0%s%s\n\n", indent, strings.Repeat(" ", gap), end)

	for p := 0; p < res.Processors; p++ {
		var parts []string
		for _, s := range res.Timeline(p) {
			if s.End <= s.Start {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %s", ui.TaskLabel(s.Task),
				ui.Dim(fmt.Sprintf("[%s, %s]", formatTime(s.Start), formatTime(s.End)))))
		}
		if len(parts) == 0 {
			parts = append(parts, ui.Dim("idle"))
		}
		fmt.Fprintf(w, "  %s  %s\n", ui.ProcessorLabel(p), strings.Join(parts, "  "))
	}
}

// ganttRow lays out non-empty slots on a row of cols cells. Slots that round
// to the same cell are pushed right so bars never overlap.
func ganttRow(slots []evaluator.Slot, scale float64, cols int) string {
	var b strings.Builder
	cursor := 0
	for _, s := range slots {
		if s.End <= s.Start {
			continue
		}
		c0 := int(math.Round(s.Start * scale))
		c1 := int(math.Round(s.End * scale))
		if c0 < cursor {
			c0 = cursor
		}
		if c1 > cols {
			c1 = cols
		}
		if c0 >= cols {
			continue
		}
		if c1 <= c0 {
			c1 = c0 + 1
		}
		b.WriteString(strings.Repeat(" ", c0-cursor))
		b.WriteString(ui.TaskBar(s.Task, barText(s.Task, c1-c0)))
		cursor = c1
	}
	b.WriteString(strings.Repeat(" ", cols-cursor))
	return b.String()
}

// barText fits the task label into n cells.
func barText(task, n int) string {
	label := fmt.Sprintf("t%d", task)
	switch {
	case n >= len(label)+2:
		inner := n - 2 - len(label)
		left := inner / 2
		return "[" + strings.Repeat(" ", left) + label + strings.Repeat(" ", inner-left) + "]"
	case n >= len(label):
		return label + strings.Repeat(" ", n-len(label))
	default:
		return strings.Repeat("#", n)
	}
}
