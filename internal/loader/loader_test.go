package loader

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lizard045/Evolutionary-Computation/internal/graph"
	"github.com/lizard045/Evolutionary-Computation/internal/schedule"
)

func TestLoadProblem_Text(t *testing.T) {
	g, err := LoadProblem(filepath.Join("testdata", "problem.txt"))
	if err != nil {
		t.Fatalf("LoadProblem: %v", err)
	}
	assertSameGraph(t, g, graph.Sample())
}

func TestLoadProblem_JSON(t *testing.T) {
	g, err := LoadProblem(filepath.Join("testdata", "problem.json"))
	if err != nil {
		t.Fatalf("LoadProblem: %v", err)
	}
	assertSameGraph(t, g, graph.Sample())
}

func TestLoadProblem_MissingFile(t *testing.T) {
	if _, err := LoadProblem(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseProblem_Minimal(t *testing.T) {
	input := `
processors 2
tasks 2
edges 1
costs
1 5
0 0   # order of rows does not matter
transfers
0 1 10
`
	g, err := ParseProblem(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseProblem: %v", err)
	}
	if g.Processors() != 2 || g.TaskCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("unexpected graph shape: P=%d N=%d E=%d", g.Processors(), g.TaskCount(), g.EdgeCount())
	}
	if g.Cost(1) != 5 {
		t.Errorf("expected cost 5 for task 1, got %v", g.Cost(1))
	}
}

func TestParseProblem_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing costs", "processors 1\ntasks 1\nedges 0\n"},
		{"costs before header", "processors 1\ncosts\n0 1\n"},
		{"unknown header", "processors 1\ntasks 1\nedges 0\ncolour 3\ncosts\n0 1\n"},
		{"bad count", "processors x\ntasks 1\nedges 0\ncosts\n0 1\n"},
		{"bad cost", "processors 1\ntasks 1\nedges 0\ncosts\n0 abc\n"},
		{"cost id out of range", "processors 1\ntasks 1\nedges 0\ncosts\n1 1\n"},
		{"duplicate cost row", "processors 1\ntasks 2\nedges 0\ncosts\n0 1\n0 1\n"},
		{"too few cost rows", "processors 1\ntasks 2\nedges 0\ncosts\n0 1\n"},
		{"edge count mismatch", "processors 1\ntasks 2\nedges 2\ncosts\n0 1\n1 1\ntransfers\n0 1 0\n"},
		{"short transfer", "processors 1\ntasks 2\nedges 1\ncosts\n0 1\n1 1\ntransfers\n0 1\n"},
		{"mangled number", "processors 1\ntasks 2\nedges 1\ncosts\n0 1\n1 1\ntransfers\n0 1 1.0.0\n"},
		{"edge to unknown task", "processors 1\ntasks 2\nedges 1\ncosts\n0 1\n1 1\ntransfers\n0 5 1\n"},
		{"cycle", "processors 1\ntasks 2\nedges 2\ncosts\n0 1\n1 1\ntransfers\n0 1 1\n1 0 1\n"},
		{"transfers before costs", "processors 1\ntasks 1\nedges 0\ntransfers\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProblem(strings.NewReader(tt.input))
			if !errors.Is(err, graph.ErrInvalidGraph) {
				t.Errorf("expected ErrInvalidGraph, got %v", err)
			}
		})
	}
}

func TestParseProblem_ErrorHasLineNumber(t *testing.T) {
	_, err := ParseProblem(strings.NewReader("processors 1\ntasks 1\nedges 0\ncosts\n0 nope\n"))
	if err == nil || !strings.Contains(err.Error(), "line 5") {
		t.Errorf("expected error mentioning line 5, got %v", err)
	}
}

func TestParseProblemJSON_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid json", `{"processors": 2,`},
		{"missing processors", `{"costs": [1]}`},
		{"costs not array", `{"processors": 1, "costs": 3}`},
		{"string cost", `{"processors": 1, "costs": ["3"]}`},
		{"short edge", `{"processors": 1, "costs": [1, 1], "edges": [[0, 1]]}`},
		{"edge object without to", `{"processors": 1, "costs": [1, 1], "edges": [{"from": 0}]}`},
		{"edges not array", `{"processors": 1, "costs": [1, 1], "edges": {}}`},
		{"task count mismatch", `{"processors": 1, "tasks": 3, "costs": [1, 1]}`},
		{"fractional processors", `{"processors": 2.7, "costs": [1, 2]}`},
		{"string processors", `{"processors": "2", "costs": [1, 2]}`},
		{"fractional task count", `{"processors": 1, "tasks": 2.5, "costs": [1, 1]}`},
		{"fractional edge source", `{"processors": 2, "costs": [1, 2], "edges": [[0.9, 1, 5]]}`},
		{"fractional edge target", `{"processors": 2, "costs": [1, 2], "edges": [[0, 1.2, 5]]}`},
		{"fractional object endpoint", `{"processors": 2, "costs": [1, 2], "edges": [{"from": 0.5, "to": 1}]}`},
		{"string volume", `{"processors": 2, "costs": [1, 2], "edges": [[0, 1, "5"]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProblemJSON([]byte(tt.input))
			if !errors.Is(err, graph.ErrInvalidGraph) {
				t.Errorf("expected ErrInvalidGraph, got %v", err)
			}
		})
	}
}

func TestParseProblemJSON_EdgeForms(t *testing.T) {
	g, err := ParseProblemJSON([]byte(`{"processors": 2, "costs": [1, 2, 3],
		"edges": [[0, 1, 5.5], {"from": 1, "to": 2}]}`))
	if err != nil {
		t.Fatalf("ParseProblemJSON: %v", err)
	}
	want := []graph.Edge{{From: 0, To: 1, Volume: 5.5}, {From: 1, To: 2, Volume: 0}}
	if !reflect.DeepEqual(g.Edges(), want) {
		t.Errorf("expected edges %v, got %v", want, g.Edges())
	}
	if g.Processors() != 2 {
		t.Errorf("expected 2 processors, got %d", g.Processors())
	}
}

func TestLoadSchedules_Text(t *testing.T) {
	schedules, err := LoadSchedules(filepath.Join("testdata", "schedules.txt"), 4)
	if err != nil {
		t.Fatalf("LoadSchedules: %v", err)
	}
	if len(schedules) != 3 {
		t.Fatalf("expected 3 schedules, got %d", len(schedules))
	}

	if schedules[0].Name != "topological round robin" {
		t.Errorf("expected first schedule name, got %q", schedules[0].Name)
	}
	if schedules[1].Name != "" {
		t.Errorf("expected unnamed second schedule, got %q", schedules[1].Name)
	}

	// ps keys decoded into quarter buckets
	want := []int{0, 0, 1, 1, 2, 1, 0, 0, 3, 0, 3, 0, 0, 3, 0, 1, 3, 2, 2, 0}
	if !reflect.DeepEqual(schedules[2].Assignment, want) {
		t.Errorf("expected decoded assignment %v, got %v", want, schedules[2].Assignment)
	}

	g := graph.Sample()
	for i := range schedules {
		if err := schedules[i].Validate(g); err != nil {
			t.Errorf("schedule %d: %v", i, err)
		}
	}
}

func TestLoadSchedules_JSON(t *testing.T) {
	schedules, err := LoadSchedules(filepath.Join("testdata", "schedules.json"), 4)
	if err != nil {
		t.Fatalf("LoadSchedules: %v", err)
	}
	if len(schedules) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(schedules))
	}
	if schedules[0].Name != "all on P0" {
		t.Errorf("unexpected name %q", schedules[0].Name)
	}
	if schedules[1].Assignment[0] != 2 || schedules[1].Assignment[3] != 0 {
		t.Errorf("unexpected key decoding: %v", schedules[1].Assignment)
	}
}

func TestParseSchedulesJSON_BareArray(t *testing.T) {
	schedules, err := ParseSchedulesJSON([]byte(`[{"order": [0], "assignment": [0]}]`), 1)
	if err != nil {
		t.Fatalf("ParseSchedulesJSON: %v", err)
	}
	if len(schedules) != 1 {
		t.Errorf("expected 1 schedule, got %d", len(schedules))
	}
}

func TestParseSchedules_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "# nothing here\n"},
		{"ss without ms", "ss = {0, 1}\n"},
		{"ss followed by ss", "ss = {0}\nss = {0}\nms = {0}\n"},
		{"ms without ss", "ms = {0, 1}\n"},
		{"not a pair", "ss {0, 1}\n"},
		{"unknown key", "xs = {0}\n"},
		{"float in ss", "ss = {0, 1.5}\nms = {0, 0}\n"},
		{"unbalanced brace", "ss = {0, 1\nms = {0, 0}\n"},
		{"empty element", "ss = {0,, 1}\nms = {0, 0, 0}\n"},
		{"key out of range", "ss = {0}\nps = {1.2}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchedules(strings.NewReader(tt.input), 4)
			if !errors.Is(err, schedule.ErrInvalidSchedule) {
				t.Errorf("expected ErrInvalidSchedule, got %v", err)
			}
		})
	}
}

func TestParseSchedulesJSON_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid json", `{"schedules": [`},
		{"no list", `{"candidates": []}`},
		{"empty list", `{"schedules": []}`},
		{"not an object", `{"schedules": [3]}`},
		{"both assignment and keys", `{"schedules": [{"order": [0], "assignment": [0], "keys": [0.1]}]}`},
		{"neither assignment nor keys", `{"schedules": [{"order": [0]}]}`},
		{"fractional order", `{"schedules": [{"order": [0.5], "assignment": [0]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchedulesJSON([]byte(tt.input), 2)
			if !errors.Is(err, schedule.ErrInvalidSchedule) {
				t.Errorf("expected ErrInvalidSchedule, got %v", err)
			}
		})
	}
}

func TestLoadSchedules_ExtensionIsCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cands.JSON")
	if err := os.WriteFile(path, []byte(`{"schedules": [{"order": [0], "assignment": [0]}]}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSchedules(path, 1); err != nil {
		t.Fatalf("LoadSchedules: %v", err)
	}
}

func assertSameGraph(t *testing.T, got, want *graph.Graph) {
	t.Helper()
	if got.Processors() != want.Processors() {
		t.Errorf("expected %d processors, got %d", want.Processors(), got.Processors())
	}
	if !reflect.DeepEqual(got.Costs(), want.Costs()) {
		t.Errorf("costs differ:\n got %v\nwant %v", got.Costs(), want.Costs())
	}
	if !reflect.DeepEqual(got.Edges(), want.Edges()) {
		t.Errorf("edges differ:\n got %v\nwant %v", got.Edges(), want.Edges())
	}
}
