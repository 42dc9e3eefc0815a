package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitdot/pkg/config"
	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/pipeline"
	"github.com/matzehuels/gitdot/pkg/record"
	"github.com/matzehuels/gitdot/pkg/render/dot"
	"github.com/matzehuels/gitdot/pkg/source"
)

const testLog = `|Record:|e5|d4| (HEAD -> main)|2017-05-05 10:00:00 -0700
|Record:|d4|c3b1||2017-05-04 10:00:00 -0700
|Record:|c3b1|b2| (topic)|2017-05-03 10:00:00 -0700
|Record:|b2|a1||2017-05-02 10:00:00 -0700
|Record:|a1|| (tag: v1)|2017-05-01 10:00:00 -0700
`

// parseGenerateFlags registers the generate flags on a scratch command and
// parses args.
func parseGenerateFlags(t *testing.T, args ...string) *generateFlags {
	t.Helper()
	var f generateFlags
	cmd := &cobra.Command{Use: "generate"}
	f.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error: %v", args, err)
	}
	return &f
}

func TestGenerateFlagsDefaults(t *testing.T) {
	f := parseGenerateFlags(t)
	opts, err := f.options(config.Default(), "git.dot")
	if err != nil {
		t.Fatalf("options() error: %v", err)
	}

	if opts.LabelWidth != record.DefaultLabelWidth {
		t.Errorf("LabelWidth = %d, want %d", opts.LabelWidth, record.DefaultLabelWidth)
	}
	if opts.Squash || opts.Crunch || opts.Align != "" {
		t.Errorf("options = %+v, want no squash, crunch or align", opts)
	}
	if opts.Style.CommitNode != dot.DefaultCommitNode {
		t.Errorf("CommitNode = %q, want default", opts.Style.CommitNode)
	}
	if f.labelSpec != record.DefaultLabelSpec {
		t.Errorf("label spec = %q, want %q", f.labelSpec, record.DefaultLabelSpec)
	}
	if len(opts.Formats) != 0 {
		t.Errorf("Formats = %v, want none", opts.Formats)
	}
}

func TestGenerateFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Style.Squash = true
	cfg.Style.Align = "day"
	cfg.Style.CommitNode = `[label="{label}", color="grey"]`
	cfg.Style.MergeNode = `[label="{label}", color="red"]`
	width := 10
	cfg.Log.LabelWidth = &width
	cfg.Log.Label = "%h|%s"
	cfg.Log.Variables = []config.Variable{{Name: "@CHID@", Pattern: `Change-Id: (\w+)`}}

	f := parseGenerateFlags(t,
		"--squash=false",
		"--cnode", `[label="{label}", color="white"]`,
		"-D", `@TICKET@=(JIRA-\d+)`,
		"--choose-branch", "main", "--choose-tag", "v1",
		"--svg", "--png", "--format", "pdf",
		"-d", "rankdir=TB",
	)
	opts, err := f.options(cfg, "git.dot")
	if err != nil {
		t.Fatalf("options() error: %v", err)
	}

	if opts.Squash {
		t.Error("Squash = true, want the flag to win over the config")
	}
	if opts.Align != "day" {
		t.Errorf("Align = %q, want day from config", opts.Align)
	}
	if opts.LabelWidth != 10 {
		t.Errorf("LabelWidth = %d, want 10 from config", opts.LabelWidth)
	}
	if f.labelSpec != "%h|%s" {
		t.Errorf("label spec = %q, want config label", f.labelSpec)
	}
	if opts.Style.CommitNode != `[label="{label}", color="white"]` {
		t.Errorf("CommitNode = %q, want flag value", opts.Style.CommitNode)
	}
	if opts.Style.MergeNode != `[label="{label}", color="red"]` {
		t.Errorf("MergeNode = %q, want config value", opts.Style.MergeNode)
	}
	if !slices.Equal(opts.Style.DotOptions, []string{"rankdir=TB"}) {
		t.Errorf("DotOptions = %v, want [rankdir=TB]", opts.Style.DotOptions)
	}
	var names []string
	for _, v := range opts.Variables {
		names = append(names, v.Name)
	}
	if !slices.Equal(names, []string{"@CHID@", "@TICKET@"}) {
		t.Errorf("Variables = %v, want config then flag", names)
	}
	if !slices.Equal(opts.Branches, []string{"main"}) || !slices.Equal(opts.Tags, []string{"v1"}) {
		t.Errorf("Branches/Tags = %v/%v", opts.Branches, opts.Tags)
	}
	if !slices.Equal(opts.Formats, []string{"pdf", "svg", "png"}) {
		t.Errorf("Formats = %v, want [pdf svg png]", opts.Formats)
	}
}

func TestGenerateFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want errors.Code
	}{
		{"bad variable", []string{"-D", "NOEQUALS"}, errors.ErrCodeInvalidInput},
		{"variable without group", []string{"-D", "@X@=abc"}, errors.ErrCodeInvalidInput},
		{"bad align", []string{"--align-by-date", "fortnight"}, errors.ErrCodeInvalidGranularity},
		{"bad format", []string{"--format", "bmp"}, errors.ErrCodeInvalidFormat},
		{"negative width", []string{"--cnode-label-maxwidth=-1"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseGenerateFlags(t, tt.args...)
			_, err := f.options(config.Default(), "git.dot")
			if !errors.Is(err, tt.want) {
				t.Errorf("options() error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestLogFlagsSource(t *testing.T) {
	tests := []struct {
		name string
		args []string
		cfg  config.LogConfig
		want string
	}{
		{"git by default", nil, config.LogConfig{}, "source.GitCommand"},
		{"kept log", []string{"-i", "git.dot.keep"}, config.LogConfig{}, "source.File"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseGenerateFlags(t, tt.args...)
			f.merge(tt.cfg)
			src, err := f.source()
			if err != nil {
				t.Fatalf("source() error: %v", err)
			}
			switch src.(type) {
			case source.GitCommand:
				if tt.want != "source.GitCommand" {
					t.Errorf("source() = %T, want %s", src, tt.want)
				}
			case source.File:
				if tt.want != "source.File" {
					t.Errorf("source() = %T, want %s", src, tt.want)
				}
			default:
				t.Errorf("source() = %T, want %s", src, tt.want)
			}
		})
	}
}

func TestLogFlagsGitCommandFromConfig(t *testing.T) {
	f := parseGenerateFlags(t, "--since", "2017-01-01")
	f.merge(config.LogConfig{GitCommand: "cat log.txt", Range: "main"})
	src, err := f.source()
	if err != nil {
		t.Fatalf("source() error: %v", err)
	}
	g, ok := src.(source.GitCommand)
	if !ok {
		t.Fatalf("source() = %T, want GitCommand", src)
	}
	if g.Command != "cat log.txt" || g.Options.Range != "main" || g.Options.Since != "2017-01-01" {
		t.Errorf("GitCommand = %+v", g)
	}
}

func TestGenerateCommandFromKeptLog(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "log.keep")
	if err := os.WriteFile(input, []byte(testLog), 0o644); err != nil {
		t.Fatal(err)
	}
	dotFile := filepath.Join(dir, "git.dot")

	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs([]string{
		"--config", writeConfig(t, dir, "[cache]\ndisabled = true\n"),
		"generate", "-i", input, "--squash", "--choose-tag", "v1", dotFile,
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("generate error: %v", err)
	}

	data, err := os.ReadFile(dotFile)
	if err != nil {
		t.Fatalf("DOT file not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("DOT file = %q", data)
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "gitdot.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// keptLogViewer returns a viewer over testLog without a cache.
func keptLogViewer(t *testing.T) *viewer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.keep")
	if err := os.WriteFile(path, []byte(testLog), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := newLogger(&bytes.Buffer{}, log.InfoLevel)
	runner := pipeline.NewRunner(nil, nil, logger)
	opts := pipeline.Options{DotFile: viewerDotFile, Page: dot.DefaultPage("")}
	return newViewer(runner, source.File{Path: path}, opts, false, logger)
}
