package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lizard045/Evolutionary-Computation/internal/evaluator"
)

const stateFile = "last-run.json"

// RunState is the persisted outcome of the most recent evaluation run.
type RunState struct {
	RunID         string              `json:"run_id"`
	CreatedAt     time.Time           `json:"created_at"`
	ProblemPath   string              `json:"problem_path,omitempty"` // empty = built-in sample
	SchedulesPath string              `json:"schedules_path,omitempty"`
	Lenient       bool                `json:"lenient"`
	Elapsed       time.Duration       `json:"elapsed_ns"`
	Results       []*evaluator.Result `json:"results"`

	mu   sync.Mutex `json:"-"`
	path string     `json:"-"`
}

// New creates a RunState for results under dir and persists it. An empty
// runID is replaced by a fresh uuid.
func New(dir, runID, problemPath, schedulesPath string, lenient bool, elapsed time.Duration, results []*evaluator.Result) (*RunState, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	if runID == "" {
		runID = uuid.NewString()
	}

	s := &RunState{
		RunID:         runID,
		CreatedAt:     time.Now(),
		ProblemPath:   problemPath,
		SchedulesPath: schedulesPath,
		Lenient:       lenient,
		Elapsed:       elapsed,
		Results:       results,
		path:          filepath.Join(dir, stateFile),
	}

	if err := s.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the last run from dir.
func Load(dir string) (*RunState, error) {
	path := filepath.Join(dir, stateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s RunState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = path
	return &s, nil
}

// Exists checks if a saved run exists in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, stateFile))
	return err == nil
}

// Save persists the current state to disk.
func (s *RunState) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// Best returns the result with the smallest makespan, or nil when the run has
// no results.
func (s *RunState) Best() *evaluator.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := evaluator.Best(s.Results)
	if i < 0 {
		return nil
	}
	return s.Results[i]
}

// Clean removes the saved run from dir.
func Clean(dir string) error {
	err := os.Remove(filepath.Join(dir, stateFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
