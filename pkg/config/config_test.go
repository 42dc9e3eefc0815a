package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/render/dot"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("GITDOT_TEST_REDIS_URL", "redis://cache:6379/2")
	path := writeConfig(t, t.TempDir(), `
[style]
cnode = '[label="{label}", color="red"]'
font_size = "10"
align = "day"

[log]
reader = "builtin"
label = "%h|@CHID@"
label_width = 0

[[log.variables]]
name = "@CHID@"
pattern = 'Change-Id: (\w+)'

[cache]
redis_url = "$GITDOT_TEST_REDIS_URL"
ttl = "24h"
`)

	cfg, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Load() warnings = %v", warnings)
	}
	if cfg.Style.CommitNode != `[label="{label}", color="red"]` {
		t.Errorf("Style.CommitNode = %q", cfg.Style.CommitNode)
	}
	if cfg.Log.LabelWidth == nil || *cfg.Log.LabelWidth != 0 {
		t.Errorf("Log.LabelWidth = %v, want explicit 0", cfg.Log.LabelWidth)
	}
	if len(cfg.Log.Variables) != 1 || cfg.Log.Variables[0].Name != "@CHID@" {
		t.Errorf("Log.Variables = %+v", cfg.Log.Variables)
	}
	if cfg.Cache.RedisURL != "redis://cache:6379/2" {
		t.Errorf("Cache.RedisURL = %q, want the expanded value", cfg.Cache.RedisURL)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
	}
	// Unset values keep their defaults.
	if cfg.Serve.Addr != Default().Serve.Addr {
		t.Errorf("Serve.Addr = %q, want default", cfg.Serve.Addr)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[style\n"},
		{"bad align", "[style]\nalign = \"fortnight\"\n"},
		{"bad reader", "[log]\nreader = \"svn\"\n"},
		{"negative width", "[log]\nlabel_width = -1\n"},
		{"no capture group", "[[log.variables]]\nname = \"@X@\"\npattern = \"abc\"\n"},
		{"bad font size", "[style]\nfont_size = \"big\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, _, err := Load(path)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[style]\ncolour = \"red\"\n")
	_, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "style.colour") {
		t.Errorf("Load() warnings = %v", warnings)
	}
}

func TestFind(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	repo := t.TempDir()

	if got, err := Find("", repo); err != nil || got != "" {
		t.Errorf("Find() = %q, %v; want none", got, err)
	}

	path := writeConfig(t, repo, "")
	if got, _ := Find("", repo); got != path {
		t.Errorf("Find() = %q, want %q", got, path)
	}

	if _, err := Find(filepath.Join(repo, "missing.toml"), repo); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Find(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestStyleApply(t *testing.T) {
	base := dot.DefaultStyle()
	s := StyleConfig{MergeNode: "[shape=box]", DotOptions: []string{`graph[rankdir="TB"]`}}.Apply(base)

	if s.MergeNode != "[shape=box]" {
		t.Errorf("MergeNode = %q", s.MergeNode)
	}
	if s.CommitNode != base.CommitNode {
		t.Errorf("CommitNode changed to %q", s.CommitNode)
	}
	if len(s.DotOptions) != 1 {
		t.Errorf("DotOptions = %v", s.DotOptions)
	}
}
