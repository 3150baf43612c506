package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lizard045/Evolutionary-Computation/internal/graph"
)

// LoadProblem reads a problem instance from path. Files ending in .json use the
// JSON layout, anything else the line-oriented text layout.
func LoadProblem(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem file: %w", err)
	}
	if isJSON(path) {
		return ParseProblemJSON(data)
	}
	return ParseProblem(bytes.NewReader(data))
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// ParseProblem parses the text layout:
//
//	processors 4
//	tasks 20
//	edges 35
//	costs
//	<task> <cost> [<cost> ...]
//	transfers
//	<from> <to> <volume>
//
// Blank lines and '#' comments are ignored. Cost rows may list one cost per
// processor; only the first column is used.
func ParseProblem(r io.Reader) (*graph.Graph, error) {
	const (
		header = iota
		costs
		transfers
	)

	var (
		processors, tasks, edgeCount = -1, -1, -1
		section                      = header
		costRows                     map[int]float64
		edges                        []graph.Edge
	)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(stripComment(sc.Text()))
		if len(fields) == 0 {
			continue
		}

		switch {
		case len(fields) == 1 && fields[0] == "costs":
			if tasks < 0 || processors < 0 || edgeCount < 0 {
				return nil, lineErr(graph.ErrInvalidGraph, lineNo, "costs section before processors/tasks/edges header")
			}
			section = costs
			costRows = make(map[int]float64, tasks)
			continue
		case len(fields) == 1 && fields[0] == "transfers":
			if section != costs {
				return nil, lineErr(graph.ErrInvalidGraph, lineNo, "transfers section must follow costs")
			}
			section = transfers
			continue
		}

		switch section {
		case header:
			if len(fields) != 2 {
				return nil, lineErr(graph.ErrInvalidGraph, lineNo, "expected '<key> <count>', got %q", sc.Text())
			}
			v, err := strconv.Atoi(fields[1])
			if err != nil || v < 0 {
				return nil, lineErr(graph.ErrInvalidGraph, lineNo, "invalid count %q", fields[1])
			}
			switch fields[0] {
			case "processors":
				processors = v
			case "tasks":
				tasks = v
			case "edges":
				edgeCount = v
			default:
				return nil, lineErr(graph.ErrInvalidGraph, lineNo, "unknown header key %q", fields[0])
			}

		case costs:
			if len(fields) < 2 {
				return nil, lineErr(graph.ErrInvalidGraph, lineNo, "expected '<task> <cost> [...]', got %q", sc.Text())
			}
			id, err := strconv.Atoi(fields[0])
			if err != nil || id < 0 || id >= tasks {
				return nil, lineErr(graph.ErrInvalidGraph, lineNo, "invalid task id %q", fields[0])
			}
			if _, dup := costRows[id]; dup {
				return nil, lineErr(graph.ErrInvalidGraph, lineNo, "duplicate cost row for task %d", id)
			}
			values, err := parseFloats(fields[1:])
			if err != nil {
				return nil, lineErr(graph.ErrInvalidGraph, lineNo, "%v", err)
			}
			for _, v := range values[1:] {
				if v != values[0] {
					log.Printf("warning: task %d has per-processor costs %v; using %v", id, values, values[0])
					break
				}
			}
			costRows[id] = values[0]

		case transfers:
			if len(fields) != 3 {
				return nil, lineErr(graph.ErrInvalidGraph, lineNo, "expected '<from> <to> <volume>', got %q", sc.Text())
			}
			from, errFrom := strconv.Atoi(fields[0])
			to, errTo := strconv.Atoi(fields[1])
			vol, errVol := strconv.ParseFloat(fields[2], 64)
			if errFrom != nil || errTo != nil || errVol != nil {
				return nil, lineErr(graph.ErrInvalidGraph, lineNo, "invalid transfer %q", sc.Text())
			}
			edges = append(edges, graph.Edge{From: from, To: to, Volume: vol})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read problem: %w", err)
	}

	if section == header {
		return nil, fmt.Errorf("%w: missing costs section", graph.ErrInvalidGraph)
	}
	if len(costRows) != tasks {
		return nil, fmt.Errorf("%w: declared %d tasks, found %d cost rows", graph.ErrInvalidGraph, tasks, len(costRows))
	}
	if len(edges) != edgeCount {
		return nil, fmt.Errorf("%w: declared %d edges, found %d transfer rows", graph.ErrInvalidGraph, edgeCount, len(edges))
	}

	costList := make([]float64, tasks)
	for id, c := range costRows {
		costList[id] = c
	}
	return graph.New(processors, costList, edges)
}

// ParseProblemJSON parses
//
//	{"processors": 4, "costs": [0, 80, ...], "edges": [[0, 1, 0], ...]}
//
// where each edge may also be an object {"from": 0, "to": 1, "volume": 0}.
func ParseProblemJSON(data []byte) (*graph.Graph, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: problem is not valid JSON", graph.ErrInvalidGraph)
	}
	doc := gjson.ParseBytes(data)

	procs, err := jsonInt(doc.Get("processors"))
	if err != nil {
		return nil, fmt.Errorf("%w: processors: %v", graph.ErrInvalidGraph, err)
	}

	costs, err := jsonFloats(doc.Get("costs"))
	if err != nil {
		return nil, fmt.Errorf("%w: costs: %v", graph.ErrInvalidGraph, err)
	}

	var edges []graph.Edge
	rawEdges := doc.Get("edges")
	if rawEdges.Exists() && !rawEdges.IsArray() {
		return nil, fmt.Errorf("%w: \"edges\" must be an array", graph.ErrInvalidGraph)
	}
	for i, e := range rawEdges.Array() {
		edge, err := jsonEdge(e)
		if err != nil {
			return nil, fmt.Errorf("%w: edge %d: %v", graph.ErrInvalidGraph, i, err)
		}
		edges = append(edges, edge)
	}

	if tasks := doc.Get("tasks"); tasks.Exists() {
		n, err := jsonInt(tasks)
		if err != nil {
			return nil, fmt.Errorf("%w: tasks: %v", graph.ErrInvalidGraph, err)
		}
		if n != len(costs) {
			return nil, fmt.Errorf("%w: declared %d tasks, found %d costs", graph.ErrInvalidGraph, n, len(costs))
		}
	}

	return graph.New(procs, costs, edges)
}

func jsonEdge(e gjson.Result) (graph.Edge, error) {
	if e.IsArray() {
		parts := e.Array()
		if len(parts) != 3 {
			return graph.Edge{}, fmt.Errorf("expected [from, to, volume], got %s", e.Raw)
		}
		return edgeFrom(e, parts[0], parts[1], parts[2])
	}
	if e.IsObject() {
		return edgeFrom(e, e.Get("from"), e.Get("to"), e.Get("volume"))
	}
	return graph.Edge{}, fmt.Errorf("unexpected edge %s", e.Raw)
}

// edgeFrom builds an edge from integer endpoints and a numeric volume. A
// missing volume means no transfer.
func edgeFrom(e, from, to, vol gjson.Result) (graph.Edge, error) {
	f, err := jsonInt(from)
	if err != nil {
		return graph.Edge{}, fmt.Errorf("from in %s: %v", e.Raw, err)
	}
	t, err := jsonInt(to)
	if err != nil {
		return graph.Edge{}, fmt.Errorf("to in %s: %v", e.Raw, err)
	}
	if vol.Exists() && vol.Type != gjson.Number {
		return graph.Edge{}, fmt.Errorf("non-numeric volume in %s", e.Raw)
	}
	return graph.Edge{From: f, To: t, Volume: vol.Float()}, nil
}

// jsonInt accepts only whole numbers; fractions are not truncated.
func jsonInt(v gjson.Result) (int, error) {
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("expected an integer, got %q", v.Raw)
	}
	if v.Float() != float64(v.Int()) {
		return 0, fmt.Errorf("%s is not an integer", v.Raw)
	}
	return int(v.Int()), nil
}

func jsonFloats(v gjson.Result) ([]float64, error) {
	if !v.IsArray() {
		return nil, fmt.Errorf("expected an array")
	}
	var out []float64
	for i, item := range v.Array() {
		if item.Type != gjson.Number {
			return nil, fmt.Errorf("element %d is not a number: %s", i, item.Raw)
		}
		out = append(out, item.Float())
	}
	return out, nil
}

func jsonInts(v gjson.Result) ([]int, error) {
	if !v.IsArray() {
		return nil, fmt.Errorf("expected an array")
	}
	var out []int
	for i, item := range v.Array() {
		n, err := jsonInt(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %v", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

func lineErr(kind error, line int, format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", kind, line, fmt.Sprintf(format, args...))
}
