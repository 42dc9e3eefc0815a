package record

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestSplitDecorations(t *testing.T) {
	tests := []struct {
		in           string
		wantBranches []string
		wantTags     []string
	}{
		{"", nil, nil},
		{"(HEAD -> main, tag: v1.0, origin/main)", []string{"main", "origin/main"}, []string{"v1.0"}},
		{" (tag: v2, tag: v2.0.1)", nil, []string{"v2", "v2.0.1"}},
		{"(origin/HEAD -> origin/main)", []string{"origin/main"}, nil},
		{"(HEAD)", []string{"HEAD"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, tg := SplitDecorations(tt.in)
			if !slices.Equal(b, tt.wantBranches) {
				t.Errorf("branches = %v, want %v", b, tt.wantBranches)
			}
			if !slices.Equal(tg, tt.wantTags) {
				t.Errorf("tags = %v, want %v", tg, tt.wantTags)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2017-05-01 10:11:12 -0700", time.Date(2017, 5, 1, 17, 11, 12, 0, time.UTC), false},
		{"2017-05-01T10:11:12Z", time.Date(2017, 5, 1, 10, 11, 12, 0, time.UTC), false},
		{"Mon May 1 10:11:12 2017 +0000", time.Date(2017, 5, 1, 10, 11, 12, 0, time.UTC), false},
		{"yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewVariable(t *testing.T) {
	if _, err := NewVariable("@X@", `no group`); err == nil {
		t.Error("NewVariable() without group: want error")
	}
	if _, err := NewVariable("@X@", `(`); err == nil {
		t.Error("NewVariable() with bad pattern: want error")
	}
	v, err := NewVariable("@X@", `Change-Id: (\w+)`)
	if err != nil {
		t.Fatalf("NewVariable() error: %v", err)
	}
	if v.Name != "@X@" {
		t.Errorf("Name = %q, want @X@", v.Name)
	}
}

func TestLabelFormat(t *testing.T) {
	got := LabelFormat(RecordFormat, "", "%h|%s")
	want := RecordFormat + "%n" + DefaultLabelRecordID + "|%h|%s"
	if got != want {
		t.Errorf("LabelFormat() = %q, want %q", got, want)
	}
	if got := LabelFormat(RecordFormat, "", ""); got != RecordFormat {
		t.Errorf("LabelFormat(no spec) = %q, want base", got)
	}
}

const sampleLog = `noise before the first record
|Record:|c3|b2 a1|(HEAD -> main, tag: v1.0)|2017-05-03 10:00:00 +0000
Merge branch topic
Change-Id: I111
Change-Id: I222
@@@git2dot-label@@@:|c3|@CHID@
|Record:|b2|a1|(topic)|2017-05-02 10:00:00 +0000
Change-Id: I333
@@@git2dot-label@@@:|b2|a very long subject line that will be cut here
|Record:|a1||| 2017-05-01 10:00:00 +0000
@@@git2dot-label@@@:|a1|@CHID@
`

func TestParse(t *testing.T) {
	v, err := NewVariable("@CHID@", `Change-Id: (I\w+)`)
	if err != nil {
		t.Fatal(err)
	}

	recs, err := Parse(strings.NewReader(sampleLog), Options{
		Variables:  []Variable{v},
		LabelWidth: DefaultLabelWidth,
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(recs))
	}

	c := recs[0]
	if c.ID != "c3" || !slices.Equal(c.Parents, []string{"b2", "a1"}) {
		t.Errorf("record 0 = %s %v, want c3 [b2 a1]", c.ID, c.Parents)
	}
	if !slices.Equal(c.Branches, []string{"main"}) || !slices.Equal(c.Tags, []string{"v1.0"}) {
		t.Errorf("refs = %v %v, want [main] [v1.0]", c.Branches, c.Tags)
	}
	if want := []string{"c3", "['I111', 'I222']"}; !slices.Equal(c.Labels, want) {
		t.Errorf("labels = %q, want %q", c.Labels, want)
	}

	b := recs[1]
	if want := []string{"b2", "a very long subject line that wi"}; !slices.Equal(b.Labels, want) {
		t.Errorf("labels = %q, want %q", b.Labels, want)
	}
	if got := b.Vars["@CHID@"]; !slices.Equal(got, []string{"I333"}) {
		t.Errorf("vars = %v, want [I333]", got)
	}

	a := recs[2]
	if len(a.Parents) != 0 {
		t.Errorf("root parents = %v, want none", a.Parents)
	}
	// The field only references a variable a1 never captured.
	if want := []string{"a1"}; !slices.Equal(a.Labels, want) {
		t.Errorf("labels = %q, want %q", a.Labels, want)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse(strings.NewReader("nothing here\n"), Options{}); !errors.Is(err, ErrNoRecords) {
		t.Errorf("Parse(empty) error = %v, want ErrNoRecords", err)
	}

	_, err := Parse(strings.NewReader("|Record:|abc|||not a date\n"), Options{})
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("Parse(bad date) error = %v, want *SyntaxError", err)
	}
	if se.Line != 1 {
		t.Errorf("Line = %d, want 1", se.Line)
	}

	if _, err := Parse(strings.NewReader("|Record:|abc|\n"), Options{}); err == nil {
		t.Error("Parse(short record) want error")
	}
}
