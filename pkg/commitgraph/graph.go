package commitgraph

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the commit ID is
	// empty. Every commit must have a non-empty identifier.
	ErrInvalidNodeID = errors.New("commit ID must not be empty")

	// ErrDuplicateNodeID is matched by [DuplicateIDError]. Two records
	// sharing an ID abort the run.
	ErrDuplicateNodeID = errors.New("duplicate commit ID")

	// ErrDanglingParent is matched by [DanglingParentError]. It is only
	// surfaced when the graph was created with [WithStrictParents].
	ErrDanglingParent = errors.New("dangling parent reference")

	// ErrUnknownNode is returned by [Graph.RemoveNode] when the ID is not
	// present in the graph.
	ErrUnknownNode = errors.New("unknown commit")

	// ErrBrokenAdjacency is returned by [Graph.Validate] when the parent and
	// child lists are no longer inverses of each other.
	ErrBrokenAdjacency = errors.New("parent and child lists disagree")

	// ErrBrokenChain is returned by [Graph.Validate] when a squash chain
	// annotation is malformed.
	ErrBrokenChain = errors.New("malformed squash chain")
)

// DuplicateIDError reports the ID that was added twice.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate commit ID %q", e.ID)
}

// Is makes errors.Is(err, ErrDuplicateNodeID) hold.
func (e *DuplicateIDError) Is(target error) bool { return target == ErrDuplicateNodeID }

// DanglingParentError reports a parent ID that does not resolve to a node.
type DanglingParentError struct {
	Child  string
	Parent string
}

func (e *DanglingParentError) Error() string {
	return fmt.Sprintf("commit %q references missing parent %q", e.Child, e.Parent)
}

// Is makes errors.Is(err, ErrDanglingParent) hold.
func (e *DanglingParentError) Is(target error) bool { return target == ErrDanglingParent }

// Chain is the squash state shared by every node of a squashed run.
// Head and Tail are arena indices; Length is the number of hops from head to
// tail and is always at least 1.
type Chain struct {
	Head   int
	Tail   int
	Length int
}

// Node is one commit. Nodes are owned by a [Graph] and addressed by their
// position in the graph's arena; Children holds arena indices, ParentIDs holds
// commit IDs.
//
// The zero value is not usable - ID must be set before calling AddNode.
type Node struct {
	ID        string
	ParentIDs []string
	Branches  []string
	Tags      []string
	Time      time.Time

	// Labels are the rendered label lines, in order.
	Labels []string
	// Vars maps a variable name to every value captured for this commit.
	Vars map[string][]string

	// Children is derived by DeriveChildren; do not set it directly.
	Children []int
	// Chain is nil unless the node belongs to a squashed run.
	Chain *Chain

	index    int
	retained bool
}

// Index returns the node's current arena position.
func (n *Node) Index() int { return n.index }

// HasRefs reports whether any branch or tag points at the commit.
func (n *Node) HasRefs() bool { return len(n.Branches) > 0 || len(n.Tags) > 0 }

// IsMerge reports whether the commit has more than one child.
func (n *Node) IsMerge() bool { return len(n.Children) > 1 }

// IsChainHead reports whether the node starts a squashed run.
func (n *Node) IsChainHead() bool { return n.Chain != nil && n.Chain.Head == n.index }

// IsChainTail reports whether the node ends a squashed run.
func (n *Node) IsChainTail() bool { return n.Chain != nil && n.Chain.Tail == n.index }

// IsSquashed reports whether the node is hidden inside a squashed run, i.e.
// it belongs to a chain but is neither its head nor its tail.
func (n *Node) IsSquashed() bool {
	return n.Chain != nil && n.Chain.Length > 0 && !n.IsChainHead() && !n.IsChainTail()
}

// Retained reports the mark left by choice pruning.
func (n *Node) Retained() bool { return n.retained }

// SetRetained sets the transient choice-pruning mark.
func (n *Node) SetRetained(v bool) { n.retained = v }

// Option configures a Graph.
type Option func(*Graph)

// WithStrictParents makes DeriveChildren fail on parent IDs that do not
// resolve instead of skipping them.
func WithStrictParents() Option {
	return func(g *Graph) { g.strict = true }
}

// Graph owns every commit node of one run: the arena in discovery order, the
// ID index and the per-variable usage table.
//
// The zero value is not usable - use New.
// Graph is not safe for concurrent use.
type Graph struct {
	nodes    []*Node
	index    map[string]int
	varUsage map[string][]string
	strict   bool
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		index:    make(map[string]int),
		varUsage: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode appends a commit to the arena and indexes it by ID. The node is
// copied; the returned pointer refers to the graph's copy. Variables on the
// node are recorded in the usage table.
func (g *Graph) AddNode(n Node) (*Node, error) {
	if n.ID == "" {
		return nil, ErrInvalidNodeID
	}
	if _, exists := g.index[n.ID]; exists {
		return nil, &DuplicateIDError{ID: n.ID}
	}
	node := &n
	node.index = len(g.nodes)
	node.Children = nil
	node.Chain = nil
	node.retained = false
	g.nodes = append(g.nodes, node)
	g.index[node.ID] = node.index
	for name := range node.Vars {
		g.varUsage[name] = append(g.varUsage[name], node.ID)
	}
	return node, nil
}

// DeriveChildren fills every node's Children from the parent lists. It must
// run after all nodes are added and before any pruning or squashing. Calling
// it again rebuilds the lists from scratch.
//
// Parent IDs that do not resolve are skipped, or reported as a
// *DanglingParentError when the graph is strict.
func (g *Graph) DeriveChildren() error {
	for _, n := range g.nodes {
		n.Children = nil
	}
	for _, n := range g.nodes {
		for _, pid := range n.ParentIDs {
			pi, ok := g.index[pid]
			if !ok {
				if g.strict {
					return &DanglingParentError{Child: n.ID, Parent: pid}
				}
				continue
			}
			p := g.nodes[pi]
			p.Children = append(p.Children, n.index)
		}
	}
	return nil
}

// RemoveNode deletes a node from the arena and the index and re-numbers the
// remaining nodes. The caller must first detach the node from its neighbours'
// parent and child lists. Pruning removes many nodes at once and goes through
// [Graph.RemoveNodes] instead.
func (g *Graph) RemoveNode(id string) error {
	i, ok := g.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	g.compact(map[int]bool{i: true})
	return nil
}

// RemoveNodes deletes several nodes at once with a single re-numbering pass.
// Unknown IDs are ignored. The same detach contract as RemoveNode applies.
func (g *Graph) RemoveNodes(ids []string) {
	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		if i, ok := g.index[id]; ok {
			drop[i] = true
		}
	}
	if len(drop) > 0 {
		g.compact(drop)
	}
}

// compact removes the dropped arena slots and remaps every index held by the
// survivors: their positions, child lists and chain endpoints.
func (g *Graph) compact(drop map[int]bool) {
	remap := make([]int, len(g.nodes))
	kept := g.nodes[:0]
	for i, n := range g.nodes {
		if drop[i] {
			remap[i] = -1
			delete(g.index, n.ID)
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, n)
	}
	clear(g.nodes[len(kept):])
	g.nodes = kept

	chains := make(map[*Chain]bool)
	for i, n := range g.nodes {
		n.index = i
		g.index[n.ID] = i
		n.Children = slices.DeleteFunc(n.Children, func(c int) bool { return remap[c] < 0 })
		for j, c := range n.Children {
			n.Children[j] = remap[c]
		}
		if n.Chain != nil {
			chains[n.Chain] = true
		}
	}
	for c := range chains {
		c.Head, c.Tail = remap[c.Head], remap[c.Tail]
	}
}

// Node returns the commit with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Has reports whether the ID is indexed.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// At returns the node at arena position i.
func (g *Graph) At(i int) *Node { return g.nodes[i] }

// Nodes returns the nodes in discovery order. The slice is a copy; the nodes
// are not.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Len returns the number of commits.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of resolved parent references.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		for _, pid := range n.ParentIDs {
			if g.Has(pid) {
				count++
			}
		}
	}
	return count
}

// Parents returns the resolved parent nodes of n in parent order.
func (g *Graph) Parents(n *Node) []*Node {
	var out []*Node
	for _, pid := range n.ParentIDs {
		if p, ok := g.Node(pid); ok {
			out = append(out, p)
		}
	}
	return out
}

// ChildNodes returns the child nodes of n in derivation order.
func (g *Graph) ChildNodes(n *Node) []*Node {
	out := make([]*Node, len(n.Children))
	for i, c := range n.Children {
		out[i] = g.nodes[c]
	}
	return out
}

// ByDate returns the nodes sorted by commit time. Ties keep discovery order.
func (g *Graph) ByDate() []*Node {
	out := slices.Clone(g.nodes)
	slices.SortStableFunc(out, func(a, b *Node) int { return a.Time.Compare(b.Time) })
	return out
}

// VarUsage returns, per variable name, the IDs of commits that captured a
// value for it.
func (g *Graph) VarUsage() map[string][]string { return g.varUsage }

// Validate checks that children are exactly the inverse of the resolved
// parent lists and that every chain annotation is well formed.
func (g *Graph) Validate() error {
	want := make([]map[int]int, len(g.nodes))
	for i := range want {
		want[i] = make(map[int]int)
	}
	for _, n := range g.nodes {
		for _, pid := range n.ParentIDs {
			if pi, ok := g.index[pid]; ok {
				want[pi][n.index]++
			}
		}
	}
	for i, n := range g.nodes {
		got := make(map[int]int, len(n.Children))
		for _, c := range n.Children {
			got[c]++
		}
		if len(got) != len(want[i]) {
			return fmt.Errorf("%w: %s", ErrBrokenAdjacency, n.ID)
		}
		for c, k := range want[i] {
			if got[c] != k {
				return fmt.Errorf("%w: %s", ErrBrokenAdjacency, n.ID)
			}
		}
	}
	for _, n := range g.nodes {
		c := n.Chain
		if c == nil {
			continue
		}
		if c.Length < 1 || c.Head < 0 || c.Tail < 0 || c.Head >= len(g.nodes) || c.Tail >= len(g.nodes) {
			return fmt.Errorf("%w: %s", ErrBrokenChain, n.ID)
		}
		if g.nodes[c.Head].Chain != c || g.nodes[c.Tail].Chain != c {
			return fmt.Errorf("%w: %s", ErrBrokenChain, n.ID)
		}
	}
	return nil
}
