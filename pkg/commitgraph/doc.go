// Package commitgraph provides the in-memory commit DAG that gitdot prunes,
// squashes and emits.
//
// # Overview
//
// A [Graph] owns every commit of one run. Nodes live in an arena (a slice in
// discovery order) and are looked up by commit ID through an index map.
// Parent links are stored as commit IDs, exactly as they appear in the log;
// child links are arena indices derived from the parent links by
// [Graph.DeriveChildren]. Keeping children as indices instead of pointers
// avoids ownership cycles between parents and children.
//
// # Basic Usage
//
//	g := commitgraph.New()
//	g.AddNode(commitgraph.Node{ID: "a"})
//	g.AddNode(commitgraph.Node{ID: "b", ParentIDs: []string{"a"}})
//	g.DeriveChildren()
//
// [Build] does the same for a slice of parsed records.
//
// # Invariants
//
// After DeriveChildren, every node N listed as a child of P has P's ID in its
// ParentIDs, and vice versa for every parent that resolves. Structural edits
// (see the transform subpackage) patch both directions together.
// [Graph.Validate] checks this along with the squash chain annotations.
//
// Parent IDs that do not resolve are tolerated: the log producer may have cut
// history (--since, a range) and left references to commits that were never
// loaded. They are skipped when deriving children and dropped by
// transform.PruneByDate. Use [WithStrictParents] to turn them into errors.
//
// # Removal
//
// [Graph.RemoveNode] and [Graph.RemoveNodes] compact the arena and remap
// every index held by the survivors. Callers detach the removed nodes from
// their neighbours first.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Every pass mutates state
// the next pass reads, so passes run one after another.
package commitgraph
