package config

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/render/dot"
)

// Readers accepted by LogConfig.Reader.
const (
	ReaderGit     = "git"
	ReaderBuiltin = "builtin"
)

// Config is the content of a gitdot.toml file. Every field is optional;
// command line flags override what is set here.
type Config struct {
	Style StyleConfig `toml:"style"`
	Log   LogConfig   `toml:"log"`
	Cache CacheConfig `toml:"cache"`
	Serve ServeConfig `toml:"serve"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Style.Validate(); err != nil {
		return fmt.Errorf("style: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Serve.Validate(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// StyleConfig overrides the DOT attribute templates. The keys use the node
// and edge names of the generated file: cnode, mnode, snode and so on.
type StyleConfig struct {
	CommitNode      string   `toml:"cnode"`
	MergeNode       string   `toml:"mnode"`
	SquashNode      string   `toml:"snode"`
	BranchNode      string   `toml:"bnode"`
	TagNode         string   `toml:"tnode"`
	BranchEdge      string   `toml:"bedge"`
	TagEdge         string   `toml:"tedge"`
	SummaryEdge     string   `toml:"sedge"`
	ParentEdge      string   `toml:"cnode_pedge"`
	MergeParentEdge string   `toml:"mnode_pedge"`
	DotOptions      []string `toml:"dot_options"`
	FontName        string   `toml:"font_name"`
	FontSize        string   `toml:"font_size"`
	GraphLabel      string   `toml:"graph_label"`
	Align           string   `toml:"align"`
	Crunch          bool     `toml:"crunch"`
	Squash          bool     `toml:"squash"`
}

var fontSizeRe = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Validate validates the style configuration.
func (c *StyleConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FontSize, validation.Match(fontSizeRe)),
		validation.Field(&c.Align, validation.By(func(v any) error {
			if s, _ := v.(string); s != "" {
				_, err := dot.ParseGranularity(s)
				return err
			}
			return nil
		})),
	)
}

// Apply returns base with every non-empty field of c substituted.
func (c StyleConfig) Apply(base dot.Style) dot.Style {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.CommitNode, c.CommitNode)
	set(&base.MergeNode, c.MergeNode)
	set(&base.SquashNode, c.SquashNode)
	set(&base.BranchNode, c.BranchNode)
	set(&base.TagNode, c.TagNode)
	set(&base.BranchEdge, c.BranchEdge)
	set(&base.TagEdge, c.TagEdge)
	set(&base.SummaryEdge, c.SummaryEdge)
	set(&base.ParentEdge, c.ParentEdge)
	set(&base.MergeParentEdge, c.MergeParentEdge)
	set(&base.FontName, c.FontName)
	set(&base.FontSize, c.FontSize)
	set(&base.GraphLabel, c.GraphLabel)
	if len(c.DotOptions) > 0 {
		base.DotOptions = append([]string(nil), c.DotOptions...)
	}
	return base
}

// Variable is one [[log.variables]] entry.
type Variable struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
}

// Validate validates the variable definition.
func (v Variable) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Name, validation.Required, validation.By(func(any) error {
			return errors.ValidateVariableName(v.Name)
		})),
		validation.Field(&v.Pattern, validation.Required, validation.By(func(any) error {
			re, err := regexp.Compile(v.Pattern)
			if err != nil {
				return err
			}
			if re.NumSubexp() < 1 {
				return fmt.Errorf("pattern has no capture group")
			}
			return nil
		})),
	)
}

// LogConfig selects how the commit log is read and labeled.
type LogConfig struct {
	// Reader is "git" (run git log) or "builtin" (go-git). Empty means git.
	Reader     string     `toml:"reader"`
	GitCommand string     `toml:"git_command"`
	Range      string     `toml:"range"`
	Label      string     `toml:"label"`
	LabelWidth *int       `toml:"label_width"`
	RecordID   string     `toml:"record_id"`
	Variables  []Variable `toml:"variables"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Reader, validation.In(ReaderGit, ReaderBuiltin)),
		validation.Field(&c.LabelWidth, validation.Min(0)),
		validation.Field(&c.Variables),
	)
}

// CacheConfig configures the log and image cache.
type CacheConfig struct {
	Disabled bool `toml:"disabled"`
	// Dir overrides the user cache directory.
	Dir string `toml:"dir"`
	// RedisURL selects a shared Redis cache instead of files,
	// e.g. redis://localhost:6379/0.
	RedisURL string `toml:"redis_url"`
	// Prefix scopes keys in a shared Redis database.
	Prefix string        `toml:"prefix"`
	TTL    time.Duration `toml:"ttl"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
}

// ServeConfig configures gitdot serve.
type ServeConfig struct {
	Addr     string        `toml:"addr"`
	Debounce time.Duration `toml:"debounce"`
}

// Validate validates the serve configuration.
func (c *ServeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Reader: ReaderGit},
		Cache: CacheConfig{
			Prefix: "gitdot:",
			TTL:    7 * 24 * time.Hour,
		},
		Serve: ServeConfig{
			Addr:     "127.0.0.1:8080",
			Debounce: 500 * time.Millisecond,
		},
	}
}
