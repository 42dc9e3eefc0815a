package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitdot/pkg/config"
	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/pipeline"
	"github.com/matzehuels/gitdot/pkg/record"
	"github.com/matzehuels/gitdot/pkg/render/dot"
	"github.com/matzehuels/gitdot/pkg/source"
)

// generateFlags holds the flags of generate. Style and output flags override
// the [style] config section.
type generateFlags struct {
	logFlags

	labelWidth int
	strict     bool
	branches   []string
	tags       []string
	squash     bool
	align      string
	crunch     bool
	keep       bool
	formats    []string
	png        bool
	svg        bool
	noCache    bool
	refresh    bool
	pick       bool

	html          string
	htmlTitle     string
	htmlMinHeight string
	htmlHead      []string

	style      config.StyleConfig
	dotOptions []string
}

func (f *generateFlags) register(cmd *cobra.Command) {
	f.logFlags.register(cmd)
	fs := cmd.Flags()

	fs.IntVarP(&f.labelWidth, "cnode-label-maxwidth", "w", record.DefaultLabelWidth, "truncate label lines to this many characters, 0 disables")
	fs.BoolVar(&f.strict, "strict", false, "fail on parents missing from the log")

	fs.StringArrayVar(&f.branches, "choose-branch", nil, "keep only commits reachable from this branch (repeatable)")
	fs.StringArrayVar(&f.tags, "choose-tag", nil, "keep only commits reachable from this tag (repeatable)")
	fs.BoolVarP(&f.squash, "squash", "s", false, "squash chains of plain commits into summary edges")
	fs.StringVar(&f.align, "align-by-date", "", fmt.Sprintf("order commits by date at this granularity (%v)", dot.Granularities()))
	fs.BoolVarP(&f.crunch, "crunch", "c", false, "collapse all branches (and all tags) of a commit into one node")
	fs.BoolVar(&f.pick, "pick", false, "choose branches and tags interactively")

	fs.BoolVarP(&f.keep, "keep", "k", false, "save the raw log as DOT_FILE.keep")
	fs.StringSliceVar(&f.formats, "format", nil, "render images: svg, png, jpg, pdf")
	fs.BoolVar(&f.png, "png", false, "render DOT_FILE.png")
	fs.BoolVar(&f.svg, "svg", false, "render DOT_FILE.svg")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the log and image cache")
	fs.BoolVar(&f.refresh, "refresh", false, "read the log again even if it is cached")

	fs.StringVar(&f.html, "html", "", "write a pan/zoom HTML page for DOT_FILE.svg")
	fs.StringVar(&f.htmlTitle, "html-title", dot.DefaultHTMLTitle, "HTML page title")
	fs.StringVar(&f.htmlMinHeight, "html-min-height", dot.DefaultHTMLMinHeight, "minimum height of the image on the page")
	fs.StringArrayVar(&f.htmlHead, "html-head", []string{dot.DefaultHTMLHead}, "extra <head> statement (repeatable)")

	fs.StringVar(&f.style.CommitNode, "cnode", "", "commit node attributes")
	fs.StringVar(&f.style.MergeNode, "mnode", "", "merge node attributes")
	fs.StringVar(&f.style.SquashNode, "snode", "", "squashed chain anchor attributes")
	fs.StringVar(&f.style.BranchNode, "bnode", "", "branch node attributes")
	fs.StringVar(&f.style.TagNode, "tnode", "", "tag node attributes")
	fs.StringVar(&f.style.BranchEdge, "bedge", "", "branch edge attributes")
	fs.StringVar(&f.style.TagEdge, "tedge", "", "tag edge attributes")
	fs.StringVar(&f.style.SummaryEdge, "sedge", "", "squash summary edge attributes")
	fs.StringVar(&f.style.ParentEdge, "cnode-pedge", "", "commit parent edge attributes")
	fs.StringVar(&f.style.MergeParentEdge, "mnode-pedge", "", "merge parent edge attributes")
	fs.StringArrayVarP(&f.dotOptions, "dot-option", "d", nil, "global DOT statement, replaces the defaults (repeatable)")
	fs.StringVar(&f.style.FontName, "font-name", "", "font name")
	fs.StringVar(&f.style.FontSize, "font-size", "", "font size in points")
	fs.StringVarP(&f.style.GraphLabel, "graph-label", "L", "", "graph label statement, e.g. 'label=\"my repo\"'")
}

// options builds the pipeline options for dotFile from the config and the
// flags, flags taking precedence.
func (f *generateFlags) options(cfg *config.Config, dotFile string) (pipeline.Options, error) {
	f.merge(cfg.Log)

	vars, err := f.variables(cfg.Log)
	if err != nil {
		return pipeline.Options{}, err
	}

	labelWidth := f.labelWidth
	if !f.changed("cnode-label-maxwidth") && cfg.Log.LabelWidth != nil {
		labelWidth = *cfg.Log.LabelWidth
	}

	style := cfg.Style
	if !f.changed("squash") {
		f.squash = style.Squash
	}
	if !f.changed("crunch") {
		f.crunch = style.Crunch
	}
	if !f.changed("align-by-date") {
		f.align = style.Align
	}
	f.style.DotOptions = f.dotOptions

	formats := append([]string(nil), f.formats...)
	if f.svg {
		formats = append(formats, string(dot.SVG))
	}
	if f.png {
		formats = append(formats, string(dot.PNG))
	}

	opts := pipeline.Options{
		Variables:     vars,
		LabelRecordID: f.recordID,
		LabelWidth:    labelWidth,
		Strict:        f.strict,
		Branches:      f.branches,
		Tags:          f.tags,
		Squash:        f.squash,
		Align:         f.align,
		Crunch:        f.crunch,
		DotFile:       dotFile,
		Style:         f.style.Apply(style.Apply(dot.DefaultStyle())),
		Keep:          f.keep,
		Formats:       formats,
		HTML:          f.html,
		Page: dot.Page{
			Title:     f.htmlTitle,
			MinHeight: f.htmlMinHeight,
			Head:      f.htmlHead,
		},
		Refresh: f.refresh,
	}
	if err := opts.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags generateFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "generate DOT_FILE",
		Short: "Write a Graphviz DOT file of the commit graph",
		Long: `Generate reads the commit log, builds the commit graph and writes it as a
Graphviz DOT file. Branches and tags become boxes attached to their commits,
merge commits get their own color and long chains of plain commits can be
squashed into a single labeled edge.

Options are read from .gitdot.toml in the repository (or --config) and
overridden by flags.`,
		Example: `  # DOT file of the current repository
  gitdot generate git.dot

  # Squashed graph of two branches since January, rendered with an HTML viewer
  gitdot generate --squash --since 2024-01-01 \
      --choose-branch main --choose-branch release \
      --html git.html git.dot

  # Label commits with hash, subject and Change-Id
  gitdot generate -l '%h|%s|@CHID@' -D '@CHID@=Change-Id: (\w+)' git.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.runGenerate(ctx, &flags, args[0]); err != nil || !watch {
				return err
			}
			return c.watchGenerate(ctx, &flags, args[0])
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&watch, "watch", false, "regenerate whenever a ref of the repository changes")
	return cmd
}

// runGenerate runs the pipeline for one DOT file.
func (c *CLI) runGenerate(ctx context.Context, flags *generateFlags, dotFile string) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig(flags.repo)
	if err != nil {
		return err
	}
	opts, err := flags.options(cfg, dotFile)
	if err != nil {
		return err
	}
	src, err := flags.source()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg.Cache, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if flags.pick {
		branches, tags, ok, err := c.pick(ctx, runner, src, opts)
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Cancelled")
			return nil
		}
		opts.Branches, opts.Tags = branches, tags
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Generating "+filepath.Base(dotFile)+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, src, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	printGenerateResult(result)
	logger.Debug("pipeline finished", "read", result.Stats.ReadTime, "graph", result.Stats.GraphTime, "render", result.Stats.RenderTime)
	prog.done("Generated " + dotFile)
	return nil
}

// watchGenerate regenerates dotFile on every ref change until ctx is done.
// Failed runs are reported and watching continues.
func (c *CLI) watchGenerate(ctx context.Context, flags *generateFlags, dotFile string) error {
	logger := loggerFromContext(ctx)
	dir, err := gitDir(flags.repo)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig(flags.repo)
	if err != nil {
		return err
	}
	flags.pick = false
	flags.refresh = true

	var mu sync.Mutex
	printInfo("Watching %s for changes", dir)
	return watchRepo(ctx, dir, cfg.Serve.Debounce, logger, func() {
		mu.Lock()
		defer mu.Unlock()
		if err := c.runGenerate(ctx, flags, dotFile); err != nil && ctx.Err() == nil {
			printError("%s", errors.UserMessage(err))
		}
	})
}

// pick reads the log and lets the user choose the branches and tags to keep.
func (c *CLI) pick(ctx context.Context, runner *pipeline.Runner, src source.Source, opts pipeline.Options) (branches, tags []string, ok bool, err error) {
	if !isTerminal(os.Stdout) {
		return nil, nil, false, errors.New(errors.ErrCodeInvalidInput, "--pick needs a terminal")
	}
	data, _, err := runner.ReadLogWithCacheInfo(ctx, src, opts)
	if err != nil {
		return nil, nil, false, err
	}
	recs, err := pipeline.ParseLog(data, opts)
	if err != nil {
		return nil, nil, false, err
	}
	refs := collectRefs(recs)
	if len(refs) == 0 {
		return nil, nil, false, errors.New(errors.ErrCodeNotFound, "no branches or tags in the log")
	}
	return pickRefs(refs)
}

// printGenerateResult prints warnings, a summary line and the files written.
func printGenerateResult(res *pipeline.Result) {
	for _, w := range res.Warnings {
		printWarning("%s", w)
	}
	s := res.Output.Summary
	printSuccess("Graph with %s commits", styleNumber.Render(fmt.Sprint(s.Logical)))
	printStats(res.Stats, res.CacheInfo)
	for _, f := range res.Files {
		printFile(f)
	}
}
