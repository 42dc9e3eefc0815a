package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitdot/pkg/buildinfo"
	"github.com/matzehuels/gitdot/pkg/cache"
	"github.com/matzehuels/gitdot/pkg/config"
	"github.com/matzehuels/gitdot/pkg/observability"
	"github.com/matzehuels/gitdot/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gitdot"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level pipeline and cache
// events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := &logHooks{logger: c.Logger}
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "gitdot draws git commit graphs with Graphviz",
		Long: `gitdot converts the commit history of a git repository into a Graphviz DOT
file showing commits, merges, branches and tags, and can render it to SVG,
PNG, JPG or PDF and wrap it in a pan/zoom HTML page.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default .gitdot.toml, then $XDG_CONFIG_HOME/gitdot/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.refsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Runner Factory
// =============================================================================

// loadConfig finds and loads the config file for the repository in dir.
func (c *CLI) loadConfig(dir string) (*config.Config, error) {
	path, err := config.Find(c.configPath, dir)
	if err != nil {
		return nil, err
	}
	cfg, warnings, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	for _, w := range warnings {
		c.Logger.Warn(w, "config", path)
	}
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.CacheConfig, noCache bool) (*pipeline.Runner, error) {
	store, keyer, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, keyer, c.Logger)
	if cfg.TTL > 0 {
		r.LogTTL = cfg.TTL
	}
	return r, nil
}

// newCache opens the configured cache. A file cache that cannot be created
// disables caching with a warning instead of failing the run.
func (c *CLI) newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, cache.Keyer, error) {
	if noCache || cfg.Disabled {
		return cache.NewNullCache(), nil, nil
	}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.RedisURL, Prefix: cfg.Prefix})
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(nil, cfg.Prefix), nil
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		c.Logger.Warn("caching disabled", "err", err)
		return cache.NewNullCache(), nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil, nil
	}
	return fc, nil, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, else the user cache
// directory ($XDG_CACHE_HOME/gitdot or ~/.cache/gitdot).
func cacheDir(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cache.DefaultDir()
}
