package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lizard045/Evolutionary-Computation/internal/claude"
	"github.com/lizard045/Evolutionary-Computation/internal/config"
	"github.com/lizard045/Evolutionary-Computation/internal/evaluator"
	"github.com/lizard045/Evolutionary-Computation/internal/graph"
	"github.com/lizard045/Evolutionary-Computation/internal/loader"
	"github.com/lizard045/Evolutionary-Computation/internal/reporter"
	"github.com/lizard045/Evolutionary-Computation/internal/schedule"
	"github.com/lizard045/Evolutionary-Computation/internal/state"
	"github.com/lizard045/Evolutionary-Computation/internal/store"
	"github.com/lizard045/Evolutionary-Computation/internal/ui"
	"github.com/lizard045/Evolutionary-Computation/internal/viewer"
)

var (
	flagConfig    string
	flagProblem   string
	flagSchedules string
	flagJSON      bool
	flagLenient   bool
	flagParallel  int
	flagNoColor   bool
	flagFormat    string

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "schedeval",
		Short: "Evaluate task schedules on a processor graph",
		Long: `Schedeval loads a task graph with per-task costs and per-edge transfer
volumes, evaluates candidate schedules (execution order plus processor
assignment) and reports makespans, Gantt charts and the critical path bound.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(flagConfig)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("lenient") {
				cfg.Lenient = flagLenient
			}
			if cmd.Flags().Changed("parallel") {
				parallelism := flagParallel
				cfg.Parallelism = &parallelism
			}
			switch {
			case flagNoColor:
				ui.SetColor(false)
			case cfg.Color != nil:
				ui.SetColor(*cfg.Color)
			}
			return cfg.Validate()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().StringVarP(&flagProblem, "problem", "p", "", "Problem file (.txt or .json); built-in sample when empty")
	rootCmd.PersistentFlags().StringVarP(&flagSchedules, "schedules", "s", "", "Candidate schedules file (.txt or .json); baselines when empty")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagLenient, "lenient", false, "Evaluate non-topological orders instead of rejecting them")
	rootCmd.PersistentFlags().IntVar(&flagParallel, "parallel", 4, "Max concurrent evaluations (0 = unlimited)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(ganttCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(boundCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(cleanCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(explainCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadProblem reads the problem file, falling back to the built-in sample.
func loadProblem(path string) (*graph.Graph, error) {
	if path == "" {
		return graph.Sample(), nil
	}
	g, err := loader.LoadProblem(path)
	if err != nil {
		return nil, fmt.Errorf("load problem: %w", err)
	}
	return g, nil
}

// loadSchedules reads the candidates file, falling back to baseline schedules.
func loadSchedules(g *graph.Graph) ([]schedule.Schedule, error) {
	if flagSchedules == "" {
		return schedule.Baselines(g), nil
	}
	schedules, err := loader.LoadSchedules(flagSchedules, g.Processors())
	if err != nil {
		return nil, fmt.Errorf("load schedules: %w", err)
	}
	return schedules, nil
}

// evaluate is shared logic for every command that needs fresh results.
func evaluate(ctx context.Context) (*graph.Graph, []*evaluator.Result, time.Duration, error) {
	g, err := loadProblem(flagProblem)
	if err != nil {
		return nil, nil, 0, err
	}
	schedules, err := loadSchedules(g)
	if err != nil {
		return nil, nil, 0, err
	}

	start := time.Now()
	results, err := evaluator.EvaluateAll(ctx, g, schedules, evaluator.Options{Lenient: cfg.Lenient}, cfg.Workers())
	elapsed := time.Since(start)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("evaluate: %w", err)
	}

	for _, r := range results {
		if len(r.Violations) > 0 {
			ui.Warn("%s: %d precedence violations (first: %s), evaluated leniently",
				r.Name, len(r.Violations), r.Violations[0])
		}
	}
	return g, results, elapsed, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintf(os.Stderr, "\n🛑 %s\n", ui.Yellow("Received interrupt, stopping..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func evaluateCmd() *cobra.Command {
	var (
		flagGantt bool
		flagText  string
		flagStore bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate all candidate schedules and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			g, results, elapsed, err := evaluate(ctx)
			if err != nil {
				return err
			}

			if _, err := recordRun(elapsed, results, flagStore); err != nil {
				return err
			}

			rpt := reporter.New(g, results)

			if flagText != "" {
				if err := writeText(rpt, flagText, elapsed); err != nil {
					return err
				}
			}

			if flagJSON {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			rpt.PrintSummary(os.Stdout)
			if flagGantt {
				rpt.PrintGantt(os.Stdout, results[rpt.Best()], ganttWidth())
			}
			fmt.Printf("\n%s\n", ui.Dim(fmt.Sprintf("Evaluated %d candidates in %s", len(results), elapsed)))
			if flagText != "" {
				fmt.Printf("📝 Text export written to %s\n", ui.Bold(flagText))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagGantt, "gantt", false, "Also draw the Gantt chart of the best candidate")
	cmd.Flags().StringVar(&flagText, "text", "", "Write the plain text export to FILE")
	cmd.Flags().BoolVar(&flagStore, "store", false, "Archive the run in the history database")

	return cmd
}

func ganttCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gantt [N]",
		Short: "Draw the Gantt chart of candidate N (1-based, default best)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			g, results, _, err := evaluate(ctx)
			if err != nil {
				return err
			}

			idx, err := pickResult(args, results)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(results[idx])
			}

			reporter.New(g, results).PrintGantt(os.Stdout, results[idx], ganttWidth())
			return nil
		},
	}
	return cmd
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare candidate makespans in a bar chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			g, results, _, err := evaluate(ctx)
			if err != nil {
				return err
			}
			rpt := reporter.New(g, results)

			if flagJSON {
				return outputJSON(map[string]interface{}{
					"makespans": rpt.Makespans(),
					"stats":     rpt.Stats(),
					"best":      rpt.Best(),
					"bound":     rpt.Bound.TotalDuration,
				})
			}

			rpt.PrintComparison(os.Stdout, ganttWidth())
			return nil
		},
	}
	return cmd
}

func boundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bound",
		Short: "Show the critical path lower bound of the problem",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadProblem(flagProblem)
			if err != nil {
				return err
			}
			rpt := reporter.New(g, nil)

			if flagJSON {
				return outputJSON(map[string]interface{}{
					"bound":         rpt.Bound.TotalDuration,
					"critical_path": rpt.Bound.CriticalPath,
				})
			}

			rpt.PrintBound(os.Stdout)
			return nil
		},
	}
	return cmd
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Print the task graph as an ASCII DAG or Graphviz DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadProblem(flagProblem)
			if err != nil {
				return err
			}
			rpt := reporter.New(g, nil)

			switch flagFormat {
			case "dot":
				return rpt.WriteDOT(os.Stdout)
			case "ascii":
				rpt.PrintDAG(os.Stdout)
				return nil
			default:
				return fmt.Errorf("unsupported format %q (use ascii or dot)", flagFormat)
			}
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")

	return cmd
}

func showCmd() *cobra.Command {
	var flagGantt bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Re-render the last saved evaluation run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !state.Exists(cfg.StateDir) {
				return fmt.Errorf("no saved run in %s (run 'schedeval evaluate' first)", cfg.StateDir)
			}
			st, err := state.Load(cfg.StateDir)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(st)
			}

			g, err := loadProblem(st.ProblemPath)
			if err != nil {
				return err
			}
			rpt := reporter.New(g, st.Results)

			fmt.Printf("%s %s  %s\n", ui.Bold("Run"), ui.Dim(st.RunID), ui.Dim(st.CreatedAt.Format(time.RFC3339)))
			rpt.PrintSummary(os.Stdout)
			if best := st.Best(); flagGantt && best != nil {
				rpt.PrintGantt(os.Stdout, best, ganttWidth())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagGantt, "gantt", false, "Also draw the Gantt chart of the best candidate")

	return cmd
}

func cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the saved last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.Clean(cfg.StateDir); err != nil {
				return fmt.Errorf("clean state: %w", err)
			}
			fmt.Printf("🧹 %s\n", ui.Green("Saved run removed."))
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var (
		flagLimit int
		flagBest  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs from the history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(cfg.StorePath)
			if err != nil {
				return err
			}
			defer st.Close()

			var records []store.Record
			if flagBest {
				records, err = st.Best(flagLimit)
			} else {
				records, err = st.Recent(flagLimit)
			}
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(records)
			}

			if len(records) == 0 {
				fmt.Println(ui.Dim("No archived runs. Use 'schedeval evaluate --store' to archive one."))
				return nil
			}

			fmt.Printf("📚 %s\n", ui.BoldCyan("Run History"))
			fmt.Println(ui.Cyan("═══════════"))
			for _, r := range records {
				violations := ""
				if r.Violations > 0 {
					violations = ui.Yellow(fmt.Sprintf(" (%d violations)", r.Violations))
				}
				fmt.Printf("  %s  %-8s  %-24s  makespan %s  %s%s\n",
					ui.Dim(r.CreatedAt.Format("2006-01-02 15:04")),
					ui.Dim(shortID(r.RunID)),
					r.Name,
					ui.Bold(strconv.FormatFloat(r.Makespan, 'f', 2, 64)),
					ui.Dim(fmt.Sprintf("P=%d", r.Processors)),
					violations)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&flagLimit, "limit", 20, "Max records to list")
	cmd.Flags().BoolVar(&flagBest, "best", false, "Order by makespan instead of recency")

	return cmd
}

func serveCmd() *cobra.Command {
	var (
		flagListen string
		flagStore  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the problem and evaluation results over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			g, results, _, err := evaluate(ctx)
			if err != nil {
				return err
			}

			opts := viewer.Options{Lenient: cfg.Lenient}
			if flagStore {
				st, err := store.Open(cfg.StorePath)
				if err != nil {
					return err
				}
				defer st.Close()
				opts.Store = st
			}

			addr := cfg.Listen
			if flagListen != "" {
				addr = flagListen
			}

			fmt.Printf("🌐 %s serving %d tasks and %d candidates on %s\n",
				ui.BoldCyan("Schedeval:"), g.TaskCount(), len(results), ui.Bold("http://"+addr))
			return viewer.New(g, results, opts).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&flagStore, "store", false, "Expose the history database at /api/history")

	return cmd
}

func explainCmd() *cobra.Command {
	var flagCritique bool

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Ask Claude for a narrative comparison of the candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			client, err := claude.NewClient("", cfg.Model)
			if err != nil {
				return err
			}

			g, results, _, err := evaluate(ctx)
			if err != nil {
				return err
			}
			rpt := reporter.New(g, results)

			data, err := rpt.JSON()
			if err != nil {
				return err
			}

			if flagCritique {
				critique, err := client.Critique(ctx, data)
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(critique)
				}
				printCritique(critique)
				return nil
			}

			summary := rpt.PrintSummary(os.Stdout)
			fmt.Printf("\n🤖 %s\n", ui.Dim("Asking Claude for a narrative..."))
			narrative, err := client.Narrate(ctx, summary, data)
			if err != nil {
				return err
			}
			fmt.Printf("\n%s\n%s\n", ui.BoldCyan("Narrative"), narrative)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagCritique, "critique", false, "Return structured bottlenecks and suggestions instead of prose")

	return cmd
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printCritique(c *claude.Critique) {
	fmt.Printf("🔍 %s\n", ui.BoldCyan("Critique"))
	fmt.Println(ui.Cyan("════════"))
	if len(c.Bottlenecks) > 0 {
		fmt.Print("Bottlenecks: ")
		for i, id := range c.Bottlenecks {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Print(ui.TaskLabel(id))
		}
		fmt.Println()
	}
	for _, s := range c.Suggestions {
		fmt.Printf("  %s %s\n", ui.Green("→"), s)
	}
	if c.Summary != "" {
		fmt.Printf("\n%s\n", c.Summary)
	}
}

// pickResult resolves an optional 1-based candidate argument, defaulting to
// the best result.
func pickResult(args []string, results []*evaluator.Result) (int, error) {
	if len(args) == 0 {
		return evaluator.Best(results), nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(results) {
		return 0, fmt.Errorf("candidate must be a number between 1 and %d, got %q", len(results), args[0])
	}
	return n - 1, nil
}

func ganttWidth() int {
	if cfg.GanttWidth > 0 {
		return cfg.GanttWidth
	}
	return ui.TerminalWidth(100)
}

func writeText(rpt *reporter.Reporter, path string, elapsed time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create text export: %w", err)
	}
	if err := rpt.WriteText(f, elapsed); err != nil {
		f.Close()
		return fmt.Errorf("write text export: %w", err)
	}
	return f.Close()
}

// recordRun saves results as the last run and, when archived is set, adds them
// to the history database under the same run id.
func recordRun(elapsed time.Duration, results []*evaluator.Result, archived bool) (string, error) {
	runID := uuid.NewString()
	if _, err := state.New(cfg.StateDir, runID, flagProblem, flagSchedules, cfg.Lenient, elapsed, results); err != nil {
		ui.Warn("could not save run state: %v", err)
	}
	if archived {
		if err := archive(runID, results); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func archive(runID string, results []*evaluator.Result) error {
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.SaveRun(runID, results)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
