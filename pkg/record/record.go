package record

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// Marker identifies a commit record line.
	Marker = "|Record:|"

	// DefaultLabelRecordID prefixes the label line appended to each record
	// when a label spec is requested.
	DefaultLabelRecordID = "@@@git2dot-label@@@:"

	// DefaultLabelWidth is the maximum width of a single label line.
	DefaultLabelWidth = 32

	// DefaultLabelSpec shows the abbreviated hash.
	DefaultLabelSpec = "%h"

	// RecordFormat is the git log --format value that produces record lines.
	RecordFormat = "|Record:|%h|%p|%d|%ci%n%b"

	// tagPrefix marks a tag in git's %d decoration.
	tagPrefix = "tag: "
)

// Record is one normalized commit from the log.
type Record struct {
	ID       string
	Parents  []string
	Branches []string
	Tags     []string
	Time     time.Time
	Labels   []string
	Vars     map[string][]string
}

// Variable captures the first group of Pattern from any log line of a commit
// and makes it available in label fields under Name.
type Variable struct {
	Name    string
	Pattern *regexp.Regexp
}

// NewVariable compiles a variable definition. The pattern must contain at
// least one capture group.
func NewVariable(name, pattern string) (Variable, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Variable{}, fmt.Errorf("variable %s: %w", name, err)
	}
	if re.NumSubexp() < 1 {
		return Variable{}, fmt.Errorf("variable %s: pattern %q has no capture group", name, pattern)
	}
	return Variable{Name: name, Pattern: re}, nil
}

// LabelFormat appends the label line to a record format.
func LabelFormat(base, recordID, spec string) string {
	if spec == "" {
		return base
	}
	if recordID == "" {
		recordID = DefaultLabelRecordID
	}
	return base + "%n" + recordID + "|" + spec
}

// SplitDecorations splits git's %d output into branches and tags.
//
//	(HEAD -> main, tag: v1.0, origin/main)
//
// yields branches [main origin/main] and tags [v1.0].
func SplitDecorations(refs string) (branches, tags []string) {
	refs = strings.TrimSpace(refs)
	if refs == "" {
		return nil, nil
	}
	if strings.HasPrefix(refs, "(") && strings.HasSuffix(refs, ")") {
		refs = refs[1 : len(refs)-1]
	}
	for _, f := range strings.Split(refs, ",") {
		f = strings.TrimSpace(f)
		switch {
		case f == "":
		case strings.HasPrefix(f, tagPrefix):
			tags = append(tags, strings.TrimSpace(strings.TrimPrefix(f, tagPrefix)))
		case strings.Contains(f, " -> "):
			branches = append(branches, strings.SplitN(f, " -> ", 2)[1])
		default:
			branches = append(branches, f)
		}
	}
	return branches, tags
}

// TrimTagPrefix strips the "tag: " prefix git uses in decorations.
func TrimTagPrefix(name string) string {
	return strings.TrimPrefix(name, tagPrefix)
}

var dateLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"Mon Jan 2 15:04:05 2006 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the date forms git prints for %ci, %cI, %cd and %cD.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
