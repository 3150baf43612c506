package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lizard045/Evolutionary-Computation/internal/config"
	"github.com/lizard045/Evolutionary-Computation/internal/evaluator"
	"github.com/lizard045/Evolutionary-Computation/internal/state"
	"github.com/lizard045/Evolutionary-Computation/internal/store"
)

func TestPickResult(t *testing.T) {
	results := []*evaluator.Result{{Name: "a", Makespan: 30}, {Name: "b", Makespan: 20}, {Name: "c", Makespan: 25}}

	if idx, err := pickResult(nil, results); err != nil || idx != 1 {
		t.Errorf("expected best index 1, got %d (%v)", idx, err)
	}
	if idx, err := pickResult([]string{"3"}, results); err != nil || idx != 2 {
		t.Errorf("expected index 2, got %d (%v)", idx, err)
	}
	for _, arg := range []string{"0", "4", "x"} {
		if _, err := pickResult([]string{arg}, results); err == nil {
			t.Errorf("expected error for %q", arg)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("expected 8 characters, got %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("expected short ids unchanged, got %q", got)
	}
}

func TestLoadProblem_DefaultsToSample(t *testing.T) {
	g, err := loadProblem("")
	if err != nil {
		t.Fatalf("loadProblem: %v", err)
	}
	if g.TaskCount() != 20 || g.Processors() != 4 {
		t.Errorf("expected the 20-task sample on 4 processors, got %d tasks on %d", g.TaskCount(), g.Processors())
	}
}

func TestRecordRun_SharesRunID(t *testing.T) {
	dir := t.TempDir()
	saved := cfg
	cfg = config.Default()
	cfg.StateDir = filepath.Join(dir, "state")
	cfg.StorePath = filepath.Join(dir, "history.db")
	defer func() { cfg = saved }()

	results := []*evaluator.Result{{Name: "a", Order: []int{0}, Assignment: []int{0}, StartTimes: []float64{0}, EndTimes: []float64{5}, Makespan: 5}}
	runID, err := recordRun(time.Second, results, true)
	if err != nil {
		t.Fatalf("recordRun: %v", err)
	}

	last, err := state.Load(cfg.StateDir)
	if err != nil {
		t.Fatalf("state.Load: %v", err)
	}
	if last.RunID != runID {
		t.Errorf("expected state run id %s, got %s", runID, last.RunID)
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()
	records, err := st.Run(runID)
	if err != nil {
		t.Fatalf("store.Run: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 archived record under %s, got %d", runID, len(records))
	}
}
