package transform

import "github.com/matzehuels/gitdot/pkg/commitgraph"

// SquashResult counts the chains created by [Squash] and the nodes they hide.
type SquashResult struct {
	Chains int
	Hidden int
}

// Squashable reports whether n may be folded into a chain: no refs, at most
// one parent, at most one child and not already part of a chain.
func Squashable(g *commitgraph.Graph, n *commitgraph.Node) bool {
	return !n.HasRefs() && len(n.Children) <= 1 && len(g.Parents(n)) <= 1 && n.Chain == nil
}

// Squash collapses every maximal run of squashable commits into a chain. The
// head (oldest end) and tail (newest end) stay visible; the nodes between them
// are hidden. Nodes are annotated, never removed, and running Squash again
// changes nothing.
func Squash(g *commitgraph.Graph) SquashResult {
	var res SquashResult
	for _, n := range g.Nodes() {
		if !Squashable(g, n) {
			continue
		}

		head := n
		for {
			ps := g.Parents(head)
			if len(ps) != 1 || !Squashable(g, ps[0]) {
				break
			}
			head = ps[0]
		}

		tail := n
		members := []*commitgraph.Node{n}
		for len(tail.Children) == 1 {
			c := g.At(tail.Children[0])
			if !Squashable(g, c) {
				break
			}
			tail = c
			members = append(members, c)
		}
		for cur := n; cur != head; {
			cur = g.Parents(cur)[0]
			members = append(members, cur)
		}
		hops := len(members) - 1
		if hops == 0 {
			continue
		}

		chain := &commitgraph.Chain{Head: head.Index(), Tail: tail.Index(), Length: hops}
		for _, m := range members {
			m.Chain = chain
		}
		res.Chains++
		res.Hidden += hops - 1
	}
	return res
}
