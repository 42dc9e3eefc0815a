package transform

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/gitdot/pkg/commitgraph"
	"github.com/matzehuels/gitdot/pkg/record"
)

// ErrUnresolvedRef is matched by [UnresolvedRefError].
var ErrUnresolvedRef = errors.New("ref matches no commit")

// RefKind tells branches from tags.
type RefKind string

const (
	Branch RefKind = "branch"
	Tag    RefKind = "tag"
)

// UnresolvedRefError reports a requested branch or tag that no commit
// carries. It is a warning: the name simply contributes nothing.
type UnresolvedRefError struct {
	Kind RefKind
	Name string
}

func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("%s %q does not match any commit", e.Kind, e.Name)
}

// Is makes errors.Is(err, ErrUnresolvedRef) hold.
func (e *UnresolvedRefError) Is(target error) bool { return target == ErrUnresolvedRef }

// ChoiceResult describes the outcome of [PruneByChoice].
type ChoiceResult struct {
	// Kept and Pruned count nodes after and removed by the pass.
	Kept   int
	Pruned int
	// Unresolved lists the requested names that matched nothing.
	Unresolved []*UnresolvedRefError
	// NoEffect is set when the pass was requested but left the graph
	// unchanged, either because every node is an ancestor of a chosen tip or
	// because no name resolved.
	NoEffect bool
}

// Active reports whether any branch or tag was requested.
func (r ChoiceResult) Active() bool {
	return r.Kept > 0 || r.Pruned > 0 || len(r.Unresolved) > 0 || r.NoEffect
}

// PruneByChoice keeps only the commits reachable through parent edges from
// the commits carrying one of the given branches or tags, and deletes the
// rest. Tags match with or without the "tag: " prefix.
//
// With no names the pass does nothing. When nothing resolves, or nothing would
// be removed, the graph is left as it was and NoEffect is set.
func PruneByChoice(g *commitgraph.Graph, branches, tags []string) ChoiceResult {
	var res ChoiceResult
	if len(branches) == 0 && len(tags) == 0 {
		return res
	}

	tips, unresolved := resolveTips(g, branches, tags)
	res.Unresolved = unresolved
	if len(tips) == 0 {
		res.Kept = g.Len()
		res.NoEffect = true
		return res
	}

	for _, n := range g.Nodes() {
		n.SetRetained(false)
	}
	markAncestors(g, tips)

	var drop []*commitgraph.Node
	for _, n := range g.Nodes() {
		if !n.Retained() {
			drop = append(drop, n)
		}
	}
	if len(drop) == 0 {
		res.Kept = g.Len()
		res.NoEffect = true
		return res
	}

	// Reverse discovery order: children come first in the log, so walking
	// backwards detaches the oldest commits first.
	ids := make([]string, 0, len(drop))
	for _, n := range slices.Backward(drop) {
		detach(g, n)
		ids = append(ids, n.ID)
	}
	g.RemoveNodes(ids)

	res.Kept = g.Len()
	res.Pruned = len(ids)
	return res
}

// resolveTips maps requested names to the commits carrying them.
func resolveTips(g *commitgraph.Graph, branches, tags []string) ([]*commitgraph.Node, []*UnresolvedRefError) {
	var (
		tips       []*commitgraph.Node
		unresolved []*UnresolvedRefError
		seen       = make(map[int]bool)
	)
	add := func(kind RefKind, name string, has func(*commitgraph.Node) bool) {
		found := false
		for _, n := range g.Nodes() {
			if !has(n) {
				continue
			}
			found = true
			if !seen[n.Index()] {
				seen[n.Index()] = true
				tips = append(tips, n)
			}
		}
		if !found {
			unresolved = append(unresolved, &UnresolvedRefError{Kind: kind, Name: name})
		}
	}
	for _, name := range branches {
		name = strings.TrimSpace(name)
		add(Branch, name, func(n *commitgraph.Node) bool { return slices.Contains(n.Branches, name) })
	}
	for _, name := range tags {
		name = record.TrimTagPrefix(strings.TrimSpace(name))
		add(Tag, name, func(n *commitgraph.Node) bool {
			return slices.ContainsFunc(n.Tags, func(t string) bool { return record.TrimTagPrefix(t) == name })
		})
	}
	return tips, unresolved
}

// markAncestors marks every tip and its ancestors as retained with an
// explicit work stack; histories are far too deep for recursion.
func markAncestors(g *commitgraph.Graph, tips []*commitgraph.Node) {
	stack := slices.Clone(tips)
	for _, t := range tips {
		t.SetRetained(true)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.Parents(n) {
			if p.Retained() {
				continue
			}
			p.SetRetained(true)
			stack = append(stack, p)
		}
	}
}

// detach removes n from the parent list of each child and the child list of
// each parent.
func detach(g *commitgraph.Graph, n *commitgraph.Node) {
	for _, c := range g.ChildNodes(n) {
		c.ParentIDs = slices.DeleteFunc(c.ParentIDs, func(id string) bool { return id == n.ID })
	}
	for _, p := range g.Parents(n) {
		p.Children = slices.DeleteFunc(p.Children, func(i int) bool { return i == n.Index() })
	}
	n.Children = nil
}
