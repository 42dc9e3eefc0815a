package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/gitdot/pkg/record"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Refs
// =============================================================================

// Ref kinds.
const (
	refBranch = "branch"
	refTag    = "tag"
)

// Ref is a branch or tag found in the log.
type Ref struct {
	Name   string
	Kind   string
	Commit string
	Date   time.Time
}

// collectRefs lists every branch and tag of the records, branches first,
// each group sorted by name.
func collectRefs(recs []record.Record) []Ref {
	var refs []Ref
	for _, r := range recs {
		for _, b := range r.Branches {
			refs = append(refs, Ref{Name: b, Kind: refBranch, Commit: r.ID, Date: r.Time})
		}
		for _, t := range r.Tags {
			refs = append(refs, Ref{Name: t, Kind: refTag, Commit: r.ID, Date: r.Time})
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Kind != refs[j].Kind {
			return refs[i].Kind == refBranch
		}
		return refs[i].Name < refs[j].Name
	})
	return refs
}

// splitRefs separates refs into branch and tag names.
func splitRefs(refs []Ref) (branches, tags []string) {
	for _, r := range refs {
		if r.Kind == refBranch {
			branches = append(branches, r.Name)
		} else {
			tags = append(tags, r.Name)
		}
	}
	return branches, tags
}

// renderRefTable renders refs as a table.
func renderRefTable(refs []Ref, now time.Time) string {
	rows := make([][]string, len(refs))
	for i, r := range refs {
		rows[i] = []string{r.Name, r.Kind, r.Commit, formatRelativeTime(now, r.Date)}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Ref", "Kind", "Commit", "Date").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			switch col {
			case 1, 3:
				return lipgloss.NewStyle().Foreground(colorDim)
			case 2:
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// =============================================================================
// RefPickerModel - Interactive branch and tag selection
// =============================================================================

// RefPickerModel is the bubbletea model for choosing the branches and tags
// to keep.
type RefPickerModel struct {
	Refs     []Ref
	Cursor   int
	Chosen   map[int]bool
	Height   int
	Offset   int
	Done     bool
	Canceled bool
}

// NewRefPickerModel creates a new picker over refs.
func NewRefPickerModel(refs []Ref) RefPickerModel {
	return RefPickerModel{
		Refs:   refs,
		Chosen: make(map[int]bool),
		Height: 15,
	}
}

// Selection returns the chosen refs in list order.
func (m RefPickerModel) Selection() []Ref {
	var out []Ref
	for i, r := range m.Refs {
		if m.Chosen[i] {
			out = append(out, r)
		}
	}
	return out
}

func (m RefPickerModel) Init() tea.Cmd {
	return nil
}

func (m RefPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Canceled = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Refs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Refs) > 0 {
				m.Chosen[m.Cursor] = !m.Chosen[m.Cursor]
			}
		case "a":
			all := len(m.Selection()) < len(m.Refs)
			for i := range m.Refs {
				m.Chosen[i] = all
			}
		case "enter":
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m RefPickerModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Choose Branches and Tags"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Refs))
	for i := m.Offset; i < end; i++ {
		r := m.Refs[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Chosen[i] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s%s %-30s %s", cursor, box, r.Name, listDimStyle.Render(r.Kind+" "+r.Commit))
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d chosen / %d]", len(m.Selection()), len(m.Refs))))

	return b.String()
}

// pickRefs runs the picker and returns the chosen branches and tags. ok is
// false when the user quit without confirming.
func pickRefs(refs []Ref) (branches, tags []string, ok bool, err error) {
	final, err := tea.NewProgram(NewRefPickerModel(refs)).Run()
	if err != nil {
		return nil, nil, false, err
	}
	m := final.(RefPickerModel)
	if !m.Done {
		return nil, nil, false, nil
	}
	branches, tags = splitRefs(m.Selection())
	return branches, tags, true, nil
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)

	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
