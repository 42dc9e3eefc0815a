package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gitdot/pkg/cache"
	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/observability"
	"github.com/matzehuels/gitdot/pkg/render/dot"
	"github.com/matzehuels/gitdot/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// LogTTL and RenderTTL default to DefaultLogTTL and DefaultRenderTTL.
	LogTTL    time.Duration
	RenderTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		LogTTL:    DefaultLogTTL,
		RenderTTL: DefaultRenderTTL,
	}
}

// Execute runs the complete read → graph → render pipeline and writes the
// output files.
func (r *Runner) Execute(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	res, err := r.Generate(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	files, err := WriteFiles(opts, res)
	res.Files = files
	if err != nil {
		return res, err
	}
	r.Logger.Info("wrote output", "files", len(files), "dot", opts.DotFile)
	return res, nil
}

// Generate runs the pipeline without writing any file. The viewer uses it
// to produce the DOT text and images in memory.
func (r *Runner) Generate(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{}

	if w, ok := src.(source.Warner); ok {
		result.Warnings = append(result.Warnings, w.Warnings()...)
	}

	// Stage 1: Read
	readStart := time.Now()
	data, hit, err := r.ReadLogWithCacheInfo(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	result.Log = data
	result.Stats.ReadTime = time.Since(readStart)
	result.CacheInfo.LogHit = hit
	r.Logger.Info("read log",
		"source", src.Describe(),
		"bytes", len(data),
		"cached", hit,
		"duration", result.Stats.ReadTime)

	// Stage 2: Graph
	graphStart := time.Now()
	g, records, err := BuildGraph(data, opts)
	if err == nil {
		var shape ShapeStats
		var warnings []string
		shape, warnings, err = Shape(g, opts)
		result.Warnings = append(result.Warnings, warnings...)
		result.Stats.ParentsPruned = shape.Date.Dropped
		result.Stats.NodesPruned = shape.Choice.Pruned
		result.Stats.Chains = shape.Squash.Chains
		result.Stats.Hidden = shape.Squash.Hidden
	}
	result.Stats.GraphTime = time.Since(graphStart)
	if err != nil {
		observability.Pipeline().OnGraphComplete(ctx, 0, 0, result.Stats.GraphTime, err)
		return nil, err
	}
	result.Graph = g
	result.Stats.Records = records
	result.Stats.Nodes = g.Len()
	result.Stats.Edges = g.EdgeCount()
	result.Output = dot.Emit(g, opts.emitOptions())
	result.DOT = result.Output.DOT(opts.Style)
	observability.Pipeline().OnGraphComplete(ctx, result.Stats.Nodes, result.Stats.Edges, result.Stats.GraphTime, nil)

	for _, w := range result.Warnings {
		r.Logger.Warn(w)
	}
	r.Logger.Info("built graph",
		"records", records,
		"nodes", result.Stats.Nodes,
		"visible", result.Output.Summary.Visible,
		"duration", result.Stats.GraphTime)

	// Stage 3: Render
	formats := opts.formats()
	if len(formats) == 0 {
		return result, nil
	}
	renderStart := time.Now()
	artifacts, hits, err := r.RenderWithCacheInfo(ctx, result.DOT, formats)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHits = hits
	r.Logger.Info("rendered images",
		"formats", describeFormats(formats),
		"cached", hits,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ReadLogWithCacheInfo reads the raw log and reports whether it came from
// the cache. Only sources that implement source.Fingerprinter are cached.
func (r *Runner) ReadLogWithCacheInfo(ctx context.Context, src source.Source, opts Options) ([]byte, bool, error) {
	desc := src.Describe()
	hooks := observability.Pipeline()

	var key string
	if fp, ok := src.(source.Fingerprinter); ok {
		sum, err := fp.Fingerprint(ctx)
		if err != nil {
			r.Logger.Debug("fingerprint failed, not caching", "source", desc, "err", err)
		} else {
			key = r.Keyer.LogKey(sum)
		}
	}

	if key != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "log")
			return data, true, nil
		} else if err != nil {
			r.Logger.Debug("cache read failed", "key", key, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "log")
	}

	hooks.OnReadStart(ctx, desc)
	start := time.Now()
	data, err := src.Read(ctx)
	hooks.OnReadComplete(ctx, desc, len(data), time.Since(start), err)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeCommandFailed, err, "read %s", desc)
		}
		return nil, false, err
	}

	if key != "" {
		if err := r.Cache.Set(ctx, key, data, r.LogTTL); err != nil {
			r.Logger.Debug("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "log", len(data))
		}
	}
	return data, false, nil
}

// RenderWithCacheInfo renders the DOT text to every format in parallel and
// reports how many formats came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, dotText string, formats []dot.Format) (map[dot.Format][]byte, int, error) {
	names := describeFormats(formats)
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, names)
	start := time.Now()

	dotHash := cache.Hash([]byte(dotText))
	var (
		mu        sync.Mutex
		hits      int
		artifacts = make(map[dot.Format][]byte, len(formats))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range formats {
		g.Go(func() error {
			key := r.Keyer.RenderKey(dotHash, cache.RenderKeyOpts{Format: string(f)})
			data, hit, err := r.Cache.Get(gctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(gctx, "render")
				data, err = dot.Render(gctx, dotText, f)
				if err != nil {
					return renderError(f, err)
				}
				if err := r.Cache.Set(gctx, key, data, r.RenderTTL); err == nil {
					observability.Cache().OnCacheSet(gctx, "render", len(data))
				}
			} else {
				observability.Cache().OnCacheHit(gctx, "render")
			}

			mu.Lock()
			defer mu.Unlock()
			artifacts[f] = data
			if hit {
				hits++
			}
			return nil
		})
	}
	err := g.Wait()
	hooks.OnRenderComplete(ctx, names, time.Since(start), err)
	if err != nil {
		return nil, 0, err
	}
	return artifacts, hits, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
