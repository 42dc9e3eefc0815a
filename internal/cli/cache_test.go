package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitdot/pkg/cache"
	"github.com/matzehuels/gitdot/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := cacheDir(config.CacheConfig{})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
}

func TestCacheDirConfigured(t *testing.T) {
	dir, err := cacheDir(config.CacheConfig{Dir: "/tmp/gitdot-cache"})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/tmp/gitdot-cache" {
		t.Errorf("cacheDir() = %q, want /tmp/gitdot-cache", dir)
	}
}

func TestNewCache(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      config.CacheConfig
		noCache  bool
		wantFile bool
	}{
		{"no-cache flag", config.CacheConfig{Dir: t.TempDir()}, true, false},
		{"disabled in config", config.CacheConfig{Dir: t.TempDir(), Disabled: true}, false, false},
		{"file cache", config.CacheConfig{Dir: t.TempDir()}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, err := c.newCache(ctx, tt.cfg, tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer store.Close()
			_, isFile := store.(*cache.FileCache)
			if isFile != tt.wantFile {
				t.Errorf("newCache() = %T, want file cache %v", store, tt.wantFile)
			}
		})
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cacheDir := filepath.Join(dir, "cache")
	if err := os.WriteFile(cfgPath, []byte("[cache]\ndir = \""+cacheDir+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b"} {
		if err := fc.Set(context.Background(), k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "cache", "clear"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}

	if _, ok, _ := fc.Get(context.Background(), "a"); ok {
		t.Error("entry still cached after cache clear")
	}
}
