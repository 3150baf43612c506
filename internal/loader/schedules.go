package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lizard045/Evolutionary-Computation/internal/schedule"
)

// LoadSchedules reads candidate schedules from path. processors is needed to
// decode random-key assignments.
func LoadSchedules(path string, processors int) ([]schedule.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedules file: %w", err)
	}
	if isJSON(path) {
		return ParseSchedulesJSON(data, processors)
	}
	return ParseSchedules(bytes.NewReader(data), processors)
}

// ParseSchedules parses blocks of
//
//	name = <label>          (optional)
//	ss = {0, 1, 3, ...}     execution order
//	ms = {0, 1, 0, ...}     processor per task
//
// where the ms line may instead be "ps = {0.0, 0.18, ...}", random keys in
// [0,1] decoded into processors. Blank lines and '#' comments are ignored.
func ParseSchedules(r io.Reader, processors int) ([]schedule.Schedule, error) {
	var (
		out     []schedule.Schedule
		name    string
		order   []int
		pending bool // an ss line is waiting for its ms/ps line
		ssLine  int
	)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(stripComment(sc.Text()))
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, lineErr(schedule.ErrInvalidSchedule, lineNo, "expected '<key> = <value>', got %q", line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if pending && key != "ms" && key != "ps" {
			return nil, lineErr(schedule.ErrInvalidSchedule, ssLine, "ss without a following ms or ps line")
		}

		switch key {
		case "name":
			name = value
		case "ss":
			ints, err := parseIntList(value)
			if err != nil {
				return nil, lineErr(schedule.ErrInvalidSchedule, lineNo, "ss: %v", err)
			}
			order, pending, ssLine = ints, true, lineNo
		case "ms":
			if !pending {
				return nil, lineErr(schedule.ErrInvalidSchedule, lineNo, "ms without a preceding ss line")
			}
			assignment, err := parseIntList(value)
			if err != nil {
				return nil, lineErr(schedule.ErrInvalidSchedule, lineNo, "ms: %v", err)
			}
			out = append(out, schedule.Schedule{Name: name, Order: order, Assignment: assignment})
			name, order, pending = "", nil, false
		case "ps":
			if !pending {
				return nil, lineErr(schedule.ErrInvalidSchedule, lineNo, "ps without a preceding ss line")
			}
			keys, err := parseFloatList(value)
			if err != nil {
				return nil, lineErr(schedule.ErrInvalidSchedule, lineNo, "ps: %v", err)
			}
			assignment, err := schedule.FromRandomKeys(keys, processors)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			out = append(out, schedule.Schedule{Name: name, Order: order, Assignment: assignment})
			name, order, pending = "", nil, false
		default:
			return nil, lineErr(schedule.ErrInvalidSchedule, lineNo, "unknown key %q", key)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read schedules: %w", err)
	}
	if pending {
		return nil, lineErr(schedule.ErrInvalidSchedule, ssLine, "ss without a following ms or ps line")
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no schedules found", schedule.ErrInvalidSchedule)
	}
	return out, nil
}

// ParseSchedulesJSON parses
//
//	{"schedules": [{"name": "a", "order": [...], "assignment": [...]},
//	               {"order": [...], "keys": [...]}]}
//
// A bare top-level array of schedule objects is accepted as well.
func ParseSchedulesJSON(data []byte, processors int) ([]schedule.Schedule, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: schedules are not valid JSON", schedule.ErrInvalidSchedule)
	}
	doc := gjson.ParseBytes(data)
	list := doc
	if doc.IsObject() {
		list = doc.Get("schedules")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: expected a \"schedules\" array", schedule.ErrInvalidSchedule)
	}

	var out []schedule.Schedule
	for i, item := range list.Array() {
		s, err := ScheduleFromJSON(item, processors)
		if err != nil {
			return nil, fmt.Errorf("schedule %d: %w", i+1, err)
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no schedules found", schedule.ErrInvalidSchedule)
	}
	return out, nil
}

// ScheduleFromJSON decodes one schedule object. It accepts either an explicit
// "assignment" or random "keys".
func ScheduleFromJSON(item gjson.Result, processors int) (schedule.Schedule, error) {
	if !item.IsObject() {
		return schedule.Schedule{}, fmt.Errorf("%w: expected an object, got %s", schedule.ErrInvalidSchedule, item.Raw)
	}

	order, err := jsonInts(item.Get("order"))
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("%w: order: %v", schedule.ErrInvalidSchedule, err)
	}

	s := schedule.Schedule{Name: item.Get("name").String(), Order: order}
	assignment, keys := item.Get("assignment"), item.Get("keys")
	switch {
	case assignment.Exists() && keys.Exists():
		return schedule.Schedule{}, fmt.Errorf("%w: give either assignment or keys, not both", schedule.ErrInvalidSchedule)
	case assignment.Exists():
		s.Assignment, err = jsonInts(assignment)
		if err != nil {
			return schedule.Schedule{}, fmt.Errorf("%w: assignment: %v", schedule.ErrInvalidSchedule, err)
		}
	case keys.Exists():
		k, err := jsonFloats(keys)
		if err != nil {
			return schedule.Schedule{}, fmt.Errorf("%w: keys: %v", schedule.ErrInvalidSchedule, err)
		}
		s.Assignment, err = schedule.FromRandomKeys(k, processors)
		if err != nil {
			return schedule.Schedule{}, err
		}
	default:
		return schedule.Schedule{}, fmt.Errorf("%w: missing assignment or keys", schedule.ErrInvalidSchedule)
	}
	return s, nil
}

// parseIntList parses "{1, 2, 3}" or "1, 2, 3".
func parseIntList(s string) ([]int, error) {
	fields, err := listFields(s)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloatList(s string) ([]float64, error) {
	fields, err := listFields(s)
	if err != nil {
		return nil, err
	}
	return parseFloats(fields)
}

func listFields(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") != strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("unbalanced braces in %q", s)
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty list")
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return nil, fmt.Errorf("empty element at position %d", i)
		}
	}
	return parts, nil
}
