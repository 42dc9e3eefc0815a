package commitgraph

import (
	"fmt"
	"slices"

	"github.com/matzehuels/gitdot/pkg/record"
)

// Build creates a graph from parsed records in input order and derives the
// child lists. A duplicate ID aborts with a *DuplicateIDError.
func Build(records []record.Record, opts ...Option) (*Graph, error) {
	g := New(opts...)
	for _, r := range records {
		n := Node{
			ID:        r.ID,
			ParentIDs: slices.Clone(r.Parents),
			Branches:  slices.Clone(r.Branches),
			Tags:      slices.Clone(r.Tags),
			Time:      r.Time,
			Labels:    slices.Clone(r.Labels),
			Vars:      r.Vars,
		}
		if _, err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add commit: %w", err)
		}
	}
	if err := g.DeriveChildren(); err != nil {
		return nil, err
	}
	return g, nil
}
