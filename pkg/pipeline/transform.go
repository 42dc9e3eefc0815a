package pipeline

import (
	"maps"
	"slices"

	"github.com/matzehuels/gitdot/pkg/commitgraph"
	"github.com/matzehuels/gitdot/pkg/commitgraph/transform"
	"github.com/matzehuels/gitdot/pkg/errors"
)

// ShapeStats reports what the graph passes did.
type ShapeStats struct {
	Date   transform.PruneStats
	Choice transform.ChoiceResult
	Squash transform.SquashResult
}

// Shape runs the pruning and squashing passes in order and returns their
// statistics along with warnings for the user. The error reports a graph
// left inconsistent by the passes.
func Shape(g *commitgraph.Graph, opts Options) (ShapeStats, []string, error) {
	var (
		stats    ShapeStats
		warnings []string
	)

	usage := g.VarUsage()
	for _, name := range slices.Sorted(maps.Keys(usage)) {
		opts.Logger.Debug("variable usage", "variable", name, "commits", len(usage[name]))
	}

	stats.Date = transform.PruneByDate(g)
	opts.Logger.Debug("dropped unresolved parents",
		"examined", stats.Date.Examined,
		"dropped", stats.Date.Dropped)

	stats.Choice = transform.PruneByChoice(g, opts.Branches, opts.Tags)
	for _, u := range stats.Choice.Unresolved {
		warnings = append(warnings, u.Error())
	}
	if stats.Choice.NoEffect {
		warnings = append(warnings, "--choose-branch/--choose-tag had no effect")
	}
	if stats.Choice.Active() {
		opts.Logger.Debug("pruned by choice",
			"kept", stats.Choice.Kept,
			"pruned", stats.Choice.Pruned)
	}

	if opts.Squash {
		stats.Squash = transform.Squash(g)
		opts.Logger.Debug("squashed chains",
			"chains", stats.Squash.Chains,
			"hidden", stats.Squash.Hidden)
	}

	if err := g.Validate(); err != nil {
		return stats, warnings, errors.Wrap(errors.ErrCodeInternal, err, "graph check failed")
	}
	return stats, warnings, nil
}
