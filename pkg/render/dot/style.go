package dot

import (
	"strings"
)

// Attribute templates may contain {label}, which is replaced with the
// escaped label of the node or edge.
const (
	DefaultCommitNode  = `[label="{label}", color="bisque"]`
	DefaultMergeNode   = `[label="{label}", color="lightpink"]`
	DefaultSquashNode  = `[label="{label}", color="tomato"]`
	DefaultBranchNode  = `[label="{label}", color="lightblue", style=filled, shape=box, height=0.15]`
	DefaultTagNode     = `[label="{label}", color="thistle", style=filled, shape=box, height=0.15]`
	DefaultBranchEdge  = `[arrowhead=normal, color="lightblue", dir=none]`
	DefaultTagEdge     = `[arrowhead=normal, color="thistle", dir=none]`
	DefaultSummaryEdge = `[label="{label}", style=dotted, arrowhead="none", dir="none"]`
)

// DefaultDotOptions are the global statements written at the top of the
// graph.
var DefaultDotOptions = []string{
	`graph[rankdir="LR", fontsize=10.0, bgcolor="white"]`,
	`node[shape=ellipse, fontsize=10.0, style="filled"]`,
	`edge[weight=2, penwidth=1.0, fontsize=10.0, arrowtail="open", dir="back"]`,
}

// Style holds the attribute templates and global options used when writing
// DOT text.
type Style struct {
	CommitNode string
	MergeNode  string
	SquashNode string
	BranchNode string
	TagNode    string

	BranchEdge  string
	TagEdge     string
	SummaryEdge string
	// ParentEdge and MergeParentEdge are empty by default; their {label} is
	// "<child> to <parent>".
	ParentEdge      string
	MergeParentEdge string

	// DotOptions are written verbatim, one statement each.
	DotOptions []string
	// FontName and FontSize patch the fontsize= settings of DotOptions.
	FontName string
	FontSize string
	// GraphLabel is an optional trailing statement, e.g. label="my repo".
	GraphLabel string
}

// DefaultStyle returns the stock look: LR layout with pastel nodes.
func DefaultStyle() Style {
	return Style{
		CommitNode:  DefaultCommitNode,
		MergeNode:   DefaultMergeNode,
		SquashNode:  DefaultSquashNode,
		BranchNode:  DefaultBranchNode,
		TagNode:     DefaultTagNode,
		BranchEdge:  DefaultBranchEdge,
		TagEdge:     DefaultTagEdge,
		SummaryEdge: DefaultSummaryEdge,
		DotOptions:  append([]string(nil), DefaultDotOptions...),
	}
}

func (s Style) nodeTemplate(k NodeKind) string {
	switch k {
	case MergeNode:
		return s.MergeNode
	case SquashAnchorNode:
		return s.SquashNode
	case BranchNode:
		return s.BranchNode
	case TagNode:
		return s.TagNode
	default:
		return s.CommitNode
	}
}

func (s Style) edgeTemplate(k EdgeKind) string {
	switch k {
	case MergeParentEdge:
		return s.MergeParentEdge
	case SummaryEdge:
		return s.SummaryEdge
	case BranchEdge:
		return s.BranchEdge
	case TagEdge:
		return s.TagEdge
	case HintEdge:
		return "[style=invis]"
	default:
		return s.ParentEdge
	}
}

// apply fills {label} in an attribute template.
func apply(tmpl, label string) string {
	return strings.ReplaceAll(tmpl, "{label}", Escape(label))
}
