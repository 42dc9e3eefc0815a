// Package pipeline runs gitdot end to end: read the log, build and shape the
// commit graph, write DOT and render images.
//
// # Architecture
//
// The pipeline has three stages:
//
//  1. Read: obtain the raw log from a [source.Source], from the cache when
//     the source can fingerprint its state
//  2. Graph: parse records, build the graph, prune by date and choice,
//     squash chains and emit the declarations
//  3. Render: write the DOT file and render the requested image formats in
//     parallel, plus an optional HTML page
//
// The graph stage is sequential; each pass reads what the previous one
// left. Only rendering runs concurrently, from the finished DOT text.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    DotFile: "git.dot",
//	    Squash:  true,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, source.GitCommand{Options: srcOpts}, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Output.Summary.Logical)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/gitdot/pkg/commitgraph"
	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/record"
	"github.com/matzehuels/gitdot/pkg/render/dot"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultLogTTL is how long a fingerprinted log stays cached.
	DefaultLogTTL = 7 * 24 * time.Hour

	// DefaultRenderTTL is how long a rendered image stays cached.
	DefaultRenderTTL = 30 * 24 * time.Hour
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one run.
type Options struct {
	// Parse options
	Variables     []record.Variable `json:"-"`
	LabelRecordID string            `json:"label_record_id,omitempty"`
	// LabelWidth truncates label fields; zero disables truncation.
	LabelWidth int `json:"label_width"`
	// Strict treats parents missing from the log as errors.
	Strict bool `json:"strict,omitempty"`

	// Graph options
	Branches []string `json:"choose_branch,omitempty"`
	Tags     []string `json:"choose_tag,omitempty"`
	Squash   bool     `json:"squash,omitempty"`
	Align    string   `json:"align,omitempty"`
	Crunch   bool     `json:"crunch,omitempty"`

	// Output options
	DotFile string    `json:"dot_file"`
	Style   dot.Style `json:"-"`
	// Keep writes the raw log to DotFile + ".keep".
	Keep    bool     `json:"keep,omitempty"`
	Formats []string `json:"formats,omitempty"`
	HTML    string   `json:"html,omitempty"`
	Page    dot.Page `json:"-"`

	// Refresh bypasses the log cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Log is the raw log that was parsed.
	Log []byte
	// Graph is the final graph after pruning and squashing.
	Graph *commitgraph.Graph
	// Output holds the declarations and the summary.
	Output *dot.Output
	// DOT is the text written to Options.DotFile.
	DOT string
	// Artifacts contains rendered images keyed by format.
	Artifacts map[dot.Format][]byte
	// Files lists every file written, DOT file first.
	Files []string
	// Warnings are non-fatal problems worth showing the user.
	Warnings []string
	// Stats contains timing and size information.
	Stats Stats
	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records       int
	Nodes         int
	Edges         int
	ParentsPruned int
	NodesPruned   int
	Chains        int
	Hidden        int
	ReadTime      time.Duration
	GraphTime     time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LogHit     bool // Whether the raw log came from cache
	RenderHits int  // Number of formats served from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := dot.ParseFormat(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "format %q", f)
		}
	}
	return nil
}

// ValidateAlign checks an alignment granularity name.
func ValidateAlign(align string) error {
	if _, err := dot.ParseGranularity(align); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGranularity, err, "align %q", align)
	}
	return nil
}

// Validate checks the options without changing them.
func (o *Options) Validate() error {
	err := validation.ValidateStruct(o,
		validation.Field(&o.DotFile, validation.Required),
		validation.Field(&o.LabelWidth, validation.Min(0)),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	if err := errors.ValidateOutputPath(o.DotFile); err != nil {
		return err
	}
	if o.HTML != "" {
		if err := errors.ValidateOutputPath(o.HTML); err != nil {
			return err
		}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Align != "" {
		if err := ValidateAlign(o.Align); err != nil {
			return err
		}
	}
	for _, b := range o.Branches {
		if err := errors.ValidateRefName(b); err != nil {
			return err
		}
	}
	for _, t := range o.Tags {
		if err := errors.ValidateRefName(t); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults validates the options and fills in defaults. An
// HTML page needs the SVG, so it adds "svg" to the formats.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.HTML != "" && !o.hasFormat(dot.SVG) {
		o.Formats = append(o.Formats, string(dot.SVG))
	}
	if o.Style.CommitNode == "" {
		o.Style = dot.DefaultStyle()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

func (o *Options) hasFormat(f dot.Format) bool {
	for _, s := range o.Formats {
		if got, _ := dot.ParseFormat(s); got == f {
			return true
		}
	}
	return false
}

// parseOptions returns the record parser settings.
func (o *Options) parseOptions() record.Options {
	return record.Options{
		Variables:     o.Variables,
		LabelRecordID: o.LabelRecordID,
		LabelWidth:    o.LabelWidth,
	}
}

// emitOptions returns the emitter settings. Align must have been validated.
func (o *Options) emitOptions() dot.Options {
	g := dot.AlignNone
	if o.Align != "" {
		g, _ = dot.ParseGranularity(o.Align)
	}
	return dot.Options{Align: g, Crunch: o.Crunch}
}
