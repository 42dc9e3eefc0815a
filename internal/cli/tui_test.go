package cli

import (
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/gitdot/pkg/pipeline"
)

func testRefs(t *testing.T) []Ref {
	t.Helper()
	recs, err := pipeline.ParseLog([]byte(testLog), pipeline.Options{})
	if err != nil {
		t.Fatalf("ParseLog() error: %v", err)
	}
	return collectRefs(recs)
}

func TestCollectRefs(t *testing.T) {
	refs := testRefs(t)

	var got []string
	for _, r := range refs {
		got = append(got, r.Kind+":"+r.Name+"@"+r.Commit)
	}
	want := []string{"branch:main@e5", "branch:topic@c3b1", "tag:v1@a1"}
	if !slices.Equal(got, want) {
		t.Errorf("collectRefs() = %v, want %v", got, want)
	}

	branches, tags := splitRefs(refs)
	if !slices.Equal(branches, []string{"main", "topic"}) || !slices.Equal(tags, []string{"v1"}) {
		t.Errorf("splitRefs() = %v, %v", branches, tags)
	}
}

func TestRenderRefTable(t *testing.T) {
	refs := testRefs(t)
	out := renderRefTable(refs, refs[0].Date.Add(2*time.Hour))
	for _, want := range []string{"Ref", "main", "topic", "v1", "c3b1", "2h ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m RefPickerModel, keys ...string) (RefPickerModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(RefPickerModel)
	}
	return m, cmd
}

func TestRefPickerModel(t *testing.T) {
	refs := testRefs(t)

	tests := []struct {
		name     string
		keys     []string
		want     []string
		done     bool
		canceled bool
	}{
		{"toggle first", []string{" ", "enter"}, []string{"main"}, true, false},
		{"move and toggle", []string{"down", "j", " ", "enter"}, []string{"v1"}, true, false},
		{"toggle twice", []string{" ", " ", "enter"}, nil, true, false},
		{"select all", []string{"a", "enter"}, []string{"main", "topic", "v1"}, true, false},
		{"all then none", []string{"a", "a", "enter"}, nil, true, false},
		{"cursor stays in range", []string{"up", "k", "down", "down", "down", "down", " ", "enter"}, []string{"v1"}, true, false},
		{"quit", []string{" ", "q"}, []string{"main"}, false, true},
		{"escape", []string{"esc"}, nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := press(NewRefPickerModel(refs), tt.keys...)

			var got []string
			for _, r := range m.Selection() {
				got = append(got, r.Name)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Selection() = %v, want %v", got, tt.want)
			}
			if m.Done != tt.done || m.Canceled != tt.canceled {
				t.Errorf("Done/Canceled = %v/%v, want %v/%v", m.Done, m.Canceled, tt.done, tt.canceled)
			}
			if cmd == nil {
				t.Error("final key did not quit the program")
			}
		})
	}
}

func TestRefPickerView(t *testing.T) {
	m, _ := press(NewRefPickerModel(testRefs(t)), " ")
	out := m.View()
	for _, want := range []string{"Choose Branches and Tags", "[x]", "main", "[1 chosen / 3]"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q:\n%s", want, out)
		}
	}
}

func TestChooseFlags(t *testing.T) {
	got := chooseFlags([]string{"main", "feature/x"}, []string{"v1.0", "it's"})
	want := `gitdot generate --choose-branch main --choose-branch feature/x --choose-tag v1.0 --choose-tag 'it'\''s'`
	if got != want {
		t.Errorf("chooseFlags() = %s, want %s", got, want)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
		{now.Add(-30 * 24 * time.Hour), "Feb 9, 2024"},
		{time.Time{}, "—"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(now, tt.t); got != tt.want {
			t.Errorf("formatRelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
