// Package transform provides the structural passes that shape a commit graph
// before it is emitted.
//
// # Overview
//
// The passes run in a fixed order, each reading what the previous one left:
//
//  1. [PruneByDate] drops parent references that point outside the graph
//  2. [PruneByChoice] keeps only the ancestors of chosen branches and tags
//  3. [Squash] folds runs of unbranched commits into chains
//
// # Pruning by Date
//
// A log cut with --since or a revision range still names parents that were
// never loaded. [PruneByDate] removes those references so every remaining
// parent ID resolves. Edges between loaded commits are never cut, and no node
// is ever removed by this pass.
//
// # Pruning by Choice
//
// [PruneByChoice] is a mark and sweep. Every commit carrying a requested
// branch or tag is a tip; the ancestors of all tips are marked with an
// explicit stack, and unmarked commits are detached from their neighbours
// and removed in one compaction:
//
//	Before: A <- B <- C (main)      After (choose main):  A <- B <- C (main)
//	             \
//	              D <- E (topic)
//
// Names that match nothing come back as [UnresolvedRefError] values for the
// caller to report. They never fail the pass.
//
// # Squashing
//
// [Squash] finds maximal runs of commits with no refs, at most one parent and
// at most one child:
//
//	Before: A <- B <- C <- D
//	After:  A ...3... D      (B and C hidden)
//
// The oldest commit of a run is its head, the newest its tail. Both stay
// visible; everything between them is hidden and the emitter draws one
// summary edge labeled with the hop count.
package transform
