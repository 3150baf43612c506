package reporter

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lizard045/Evolutionary-Computation/internal/ui"
)

// Stats summarizes the makespans of all candidates.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"` // 0 for fewer than two candidates
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Makespans returns the makespan of every result in order.
func (r *Reporter) Makespans() []float64 {
	out := make([]float64, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Makespan
	}
	return out
}

// Stats returns makespan statistics, or the zero value when there are no
// results.
func (r *Reporter) Stats() Stats {
	ms := r.Makespans()
	if len(ms) == 0 {
		return Stats{}
	}
	s := Stats{
		Count: len(ms),
		Mean:  stat.Mean(ms, nil),
		Min:   floats.Min(ms),
		Max:   floats.Max(ms),
	}
	if len(ms) > 1 {
		s.StdDev = stat.StdDev(ms, nil)
	}
	return s
}

// PrintComparison draws a horizontal bar per candidate proportional to its
// makespan, highlighting the best one.
func (r *Reporter) PrintComparison(w io.Writer, width int) {
	fmt.Fprintf(w, "\n📈 %s\n", ui.BoldCyan("Makespan Comparison"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("═══════════════════"))

	if len(r.Results) == 0 {
		fmt.Fprintf(w, "%s\n", ui.Dim("No candidates evaluated."))
		return
	}

	nameWidth := r.nameWidth()
	barCols := width - nameWidth - 24
	if barCols < 10 {
		barCols = 10
	}

	stats := r.Stats()
	best := r.Best()
	for i, res := range r.Results {
		n := 0
		if stats.Max > 0 {
			n = int(math.Round(res.Makespan / stats.Max * float64(barCols)))
		}
		if n == 0 && res.Makespan > 0 {
			n = 1
		}
		bar := strings.Repeat("█", n)
		value := formatTime(res.Makespan)
		if i == best {
			fmt.Fprintf(w, "  %-*s %s %s %s\n", nameWidth, res.Name, ui.Green(bar), ui.BoldGreen(value), ui.Dim("← best"))
			continue
		}
		fmt.Fprintf(w, "  %-*s %s %s\n", nameWidth, res.Name, ui.Cyan(bar), value)
	}

	fmt.Fprintf(w, "%s\n", ui.Cyan("───────────────────"))
	fmt.Fprintf(w, "Mean:   %.2f", stats.Mean)
	if stats.Count > 1 {
		fmt.Fprintf(w, "  %s", ui.Dim(fmt.Sprintf("± %.2f", stats.StdDev)))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Range:  %s .. %s\n", formatTime(stats.Min), formatTime(stats.Max))
	fmt.Fprintf(w, "Bound:  %s %s\n", formatTime(r.Bound.TotalDuration),
		ui.Dim(fmt.Sprintf("(best is x%.2f)", r.Bound.Ratio(stats.Min))))
}
