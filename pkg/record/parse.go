package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoRecords is returned by Parse when the input holds no record lines.
var ErrNoRecords = errors.New("no records found")

// SyntaxError reports a malformed record line.
type SyntaxError struct {
	Line int
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %v\n\tline: %s", e.Line, e.Err, e.Text)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Options controls how log lines are turned into records.
type Options struct {
	// Variables are searched for on every line of a commit.
	Variables []Variable
	// LabelRecordID marks label lines. Empty means DefaultLabelRecordID.
	LabelRecordID string
	// LabelWidth truncates each label line; zero or negative disables it.
	LabelWidth int
}

// Parse reads a record stream: one record line per commit, optionally
// followed by body lines and a label line. Lines before the first record are
// ignored.
func Parse(r io.Reader, opts Options) ([]Record, error) {
	recID := opts.LabelRecordID
	if recID == "" {
		recID = DefaultLabelRecordID
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		records []Record
		cur     *Record
		lineNo  int
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		if i := strings.Index(line, Marker); i >= 0 {
			rec, err := parseRecordLine(line[i:])
			if err != nil {
				return nil, &SyntaxError{Line: lineNo, Text: line, Err: err}
			}
			records = append(records, rec)
			cur = &records[len(records)-1]
		}
		if cur == nil {
			continue
		}

		for _, v := range opts.Variables {
			if m := v.Pattern.FindStringSubmatch(line); m != nil {
				if cur.Vars == nil {
					cur.Vars = make(map[string][]string)
				}
				cur.Vars[v.Name] = append(cur.Vars[v.Name], m[1])
			}
		}

		if strings.Contains(line, recID) {
			addLabels(cur, line, opts)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// parseRecordLine splits "|Record:|id|parents|refs|date".
func parseRecordLine(line string) (Record, error) {
	f := strings.Split(line, "|")
	if len(f) < 6 {
		return Record{}, fmt.Errorf("record has %d fields, want 6", len(f))
	}
	id := strings.TrimSpace(f[2])
	if id == "" {
		return Record{}, errors.New("record has an empty commit id")
	}
	ts, err := ParseDate(strings.Join(f[5:], "|"))
	if err != nil {
		return Record{}, err
	}
	branches, tags := SplitDecorations(f[4])
	return Record{
		ID:       id,
		Parents:  strings.Fields(f[3]),
		Branches: branches,
		Tags:     tags,
		Time:     ts,
	}, nil
}

// addLabels appends the label fields of a label line to the record.
func addLabels(rec *Record, line string, opts Options) {
	fields := strings.Split(line, "|")
	for _, field := range fields[1:] {
		value, ok := substitute(field, rec.Vars, opts.Variables)
		if !ok {
			continue
		}
		rec.Labels = append(rec.Labels, truncate(value, opts.LabelWidth))
	}
}

// substitute replaces variable names in a label field with the values the
// commit captured. A field that references variables of which the commit
// captured none is dropped.
func substitute(field string, captured map[string][]string, vars []Variable) (string, bool) {
	referenced, resolved := false, false
	for _, v := range vars {
		if !strings.Contains(field, v.Name) {
			continue
		}
		referenced = true
		vals, ok := captured[v.Name]
		if !ok {
			continue
		}
		resolved = true
		field = strings.ReplaceAll(field, v.Name, renderValues(vals))
	}
	return field, !referenced || resolved
}

// renderValues renders one capture as-is and several as a literal list,
// e.g. ['a1', 'b2'].
func renderValues(vals []string) string {
	if len(vals) == 1 {
		return vals[0]
	}
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = "'" + v + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
