package dot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/gitdot/pkg/commitgraph"
)

// NodeKind classifies a node declaration.
type NodeKind int

const (
	PlainNode NodeKind = iota
	MergeNode
	SquashAnchorNode
	BranchNode
	TagNode
)

func (k NodeKind) String() string {
	switch k {
	case MergeNode:
		return "merge"
	case SquashAnchorNode:
		return "squash"
	case BranchNode:
		return "branch"
	case TagNode:
		return "tag"
	default:
		return "commit"
	}
}

// EdgeKind classifies an edge declaration.
type EdgeKind int

const (
	// ParentEdge joins a parent to a commit.
	ParentEdge EdgeKind = iota
	// MergeParentEdge joins a parent to a commit that is itself a merge node.
	MergeParentEdge
	// SummaryEdge joins the head of a squashed chain to its tail.
	SummaryEdge
	BranchEdge
	TagEdge
	// HintEdge is an invisible chronological ordering constraint.
	HintEdge
)

// NodeDecl declares one node. Label holds the raw label lines joined by
// newlines; escaping happens when the DOT text is written.
type NodeDecl struct {
	ID    string
	Kind  NodeKind
	Label string
}

// EdgeDecl declares one edge.
type EdgeDecl struct {
	From  string
	To    string
	Kind  EdgeKind
	Label string
}

// RankGroup is the satellite cluster of one commit with refs: the ref nodes,
// the edges tying them to the commit and the members to place on one rank.
type RankGroup struct {
	Commit  string
	Nodes   []NodeDecl
	Edges   []EdgeDecl
	Members []string
}

// Summary counts what was emitted.
type Summary struct {
	Plain        int
	Merge        int
	SquashAnchor int
	// Visible is Plain + Merge + SquashAnchor.
	Visible int
	// Logical counts every commit represented, hidden ones included.
	Logical int
}

// Options controls emission.
type Options struct {
	// Align adds chronological ordering hints at the given granularity.
	Align Granularity
	// Crunch collapses all branches (and all tags) of a commit into one node.
	Crunch bool
}

// Output is the full declaration stream for one graph.
type Output struct {
	Nodes   []NodeDecl
	Edges   []EdgeDecl
	Ranks   []RankGroup
	Hints   []EdgeDecl
	Summary Summary
}

// Emit walks the graph in discovery order and produces the declarations.
// Hidden squashed nodes are skipped everywhere. The walk is deterministic:
// the same graph always yields the same output.
func Emit(g *commitgraph.Graph, opts Options) *Output {
	out := &Output{}
	out.emitNodes(g)
	out.emitEdges(g)
	out.emitRefs(g, opts.Crunch)
	if opts.Align != AlignNone {
		out.emitHints(g, opts.Align)
	}
	out.Summary.Visible = out.Summary.Plain + out.Summary.Merge + out.Summary.SquashAnchor
	out.Summary.Logical = g.Len()
	return out
}

// Classify returns the node kind of a visible commit. Merge is checked before
// squash anchor.
func Classify(n *commitgraph.Node) NodeKind {
	switch {
	case n.IsMerge():
		return MergeNode
	case n.IsChainHead() || n.IsChainTail():
		return SquashAnchorNode
	default:
		return PlainNode
	}
}

func (o *Output) emitNodes(g *commitgraph.Graph) {
	for _, n := range g.Nodes() {
		if n.IsSquashed() {
			continue
		}
		kind := Classify(n)
		switch kind {
		case MergeNode:
			o.Summary.Merge++
		case SquashAnchorNode:
			o.Summary.SquashAnchor++
		default:
			o.Summary.Plain++
		}
		o.Nodes = append(o.Nodes, NodeDecl{ID: n.ID, Kind: kind, Label: nodeLabel(n)})
	}
}

func nodeLabel(n *commitgraph.Node) string {
	if len(n.Labels) == 0 {
		return n.ID
	}
	return strings.Join(n.Labels, "\n")
}

func (o *Output) emitEdges(g *commitgraph.Graph) {
	for _, n := range g.Nodes() {
		if n.IsSquashed() || n.IsChainTail() {
			continue
		}
		if n.IsChainHead() {
			tail := g.At(n.Chain.Tail)
			o.Edges = append(o.Edges, EdgeDecl{
				From:  n.ID,
				To:    tail.ID,
				Kind:  SummaryEdge,
				Label: strconv.Itoa(n.Chain.Length),
			})
		}
		kind := ParentEdge
		if n.IsMerge() {
			kind = MergeParentEdge
		}
		for _, p := range g.Parents(n) {
			o.Edges = append(o.Edges, EdgeDecl{
				From:  p.ID,
				To:    n.ID,
				Kind:  kind,
				Label: n.ID + " to " + p.ID,
			})
		}
	}
}

func (o *Output) emitRefs(g *commitgraph.Graph, crunch bool) {
	for _, n := range g.Nodes() {
		if n.IsSquashed() || !n.HasRefs() {
			continue
		}
		rg := RankGroup{Commit: n.ID, Members: []string{n.ID}}

		if len(n.Tags) > 0 {
			if crunch {
				id := fmt.Sprintf("tid-%08d", n.Index())
				rg.Nodes = append(rg.Nodes, NodeDecl{ID: id, Kind: TagNode, Label: strings.Join(n.Tags, "\n")})
				rg.Edges = append(rg.Edges, EdgeDecl{From: id, To: n.ID, Kind: TagEdge, Label: n.ID})
				rg.Members = append(rg.Members, id)
			} else {
				// t0 -> t1 -> ... -> commit
				prev := ""
				for _, t := range n.Tags {
					id := refID(n.ID, t)
					rg.Nodes = append(rg.Nodes, NodeDecl{ID: id, Kind: TagNode, Label: t})
					rg.Members = append(rg.Members, id)
					if prev != "" {
						rg.Edges = append(rg.Edges, EdgeDecl{From: prev, To: id, Kind: TagEdge, Label: n.ID})
					}
					prev = id
				}
				rg.Edges = append(rg.Edges, EdgeDecl{From: prev, To: n.ID, Kind: TagEdge, Label: n.ID})
			}
		}

		if len(n.Branches) > 0 {
			if crunch {
				id := fmt.Sprintf("bid-%08d", n.Index())
				rg.Nodes = append(rg.Nodes, NodeDecl{ID: id, Kind: BranchNode, Label: strings.Join(n.Branches, "\n")})
				rg.Edges = append(rg.Edges, EdgeDecl{From: n.ID, To: id, Kind: BranchEdge, Label: n.ID})
				rg.Members = append(rg.Members, id)
			} else {
				// commit -> bN -> ... -> b0
				for _, b := range n.Branches {
					id := refID(n.ID, b)
					rg.Nodes = append(rg.Nodes, NodeDecl{ID: id, Kind: BranchNode, Label: b})
					rg.Members = append(rg.Members, id)
				}
				prev := n.ID
				for i := len(n.Branches) - 1; i >= 0; i-- {
					id := refID(n.ID, n.Branches[i])
					rg.Edges = append(rg.Edges, EdgeDecl{From: prev, To: id, Kind: BranchEdge, Label: n.ID})
					prev = id
				}
			}
		}
		o.Ranks = append(o.Ranks, rg)
	}
}

func refID(commit, ref string) string { return commit + "+" + ref }

// emitHints walks the visible commits oldest first. A commit whose truncated
// time is greater than the running maximum becomes the new maximum; one whose
// truncated time is smaller gets an invisible edge from the maximum so it is
// never drawn to its left. Equal truncated times are left unordered.
func (o *Output) emitHints(g *commitgraph.Graph, gran Granularity) {
	var (
		last    *commitgraph.Node
		lastKey time.Time
	)
	for _, n := range g.ByDate() {
		if n.IsSquashed() {
			continue
		}
		key := gran.Truncate(n.Time)
		if last == nil {
			last, lastKey = n, key
			continue
		}
		switch gran.Compare(key, lastKey) {
		case 1:
			last, lastKey = n, key
		case -1:
			o.Hints = append(o.Hints, EdgeDecl{From: last.ID, To: n.ID, Kind: HintEdge})
		}
	}
}
