package transform

import (
	"slices"

	"github.com/matzehuels/gitdot/pkg/commitgraph"
)

// PruneStats counts the parent references looked at and removed.
type PruneStats struct {
	Examined int
	Dropped  int
}

// PruneByDate repairs the graph after the log was cut by a date window or a
// revision range: it drops every parent reference that does not resolve to a
// node in the graph. A reference to a parent that is present is always kept,
// whatever its commit time. Nodes are never removed; a node may end up with
// no parents.
//
// The window itself is applied when the log is read (git log --since/--until
// or the in-process reader), so the pass needs no bounds.
func PruneByDate(g *commitgraph.Graph) PruneStats {
	var stats PruneStats
	for _, n := range g.Nodes() {
		kept := n.ParentIDs[:0]
		for _, pid := range n.ParentIDs {
			stats.Examined++
			if g.Has(pid) {
				kept = append(kept, pid)
				continue
			}
			stats.Dropped++
		}
		n.ParentIDs = slices.Clip(kept)
	}
	return stats
}
