package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitdot/pkg/config"
	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/record"
	"github.com/matzehuels/gitdot/pkg/source"
)

// logFlags select where the commit log comes from and how it is labeled.
// Every command that reads a log registers them.
type logFlags struct {
	repo      string
	input     string
	gitCmd    string
	rng       string
	since     string
	until     string
	label     string
	recordID  string
	vars      []string
	builtin   bool
	cmd       *cobra.Command
	labelSpec string
}

func (f *logFlags) register(cmd *cobra.Command) {
	f.cmd = cmd
	fs := cmd.Flags()
	fs.StringVarP(&f.repo, "repo", "C", ".", "repository directory")
	fs.StringVarP(&f.input, "input", "i", "", "read the log from a file saved with --keep instead of git")
	fs.StringVarP(&f.gitCmd, "gitcmd", "g", "", "custom shell command that prints the log in record format")
	fs.StringVar(&f.rng, "range", "", "git revision range (default \""+source.DefaultRange+"\")")
	fs.StringVar(&f.since, "since", "", "only commits more recent than this date")
	fs.StringVar(&f.until, "until", "", "only commits older than this date")
	fs.StringVarP(&f.label, "cnode-label", "l", "", "commit label spec, '|' separates lines (default \""+record.DefaultLabelSpec+"\")")
	fs.StringVarP(&f.recordID, "cnode-label-recid", "x", "", "marker of the label line in the log (default \""+record.DefaultLabelRecordID+"\")")
	fs.StringArrayVarP(&f.vars, "define-var", "D", nil, "define a label variable as NAME=REGEX; the first group is captured (repeatable)")
	fs.BoolVar(&f.builtin, "builtin", false, "read the repository in-process instead of running git")
}

// changed reports whether the named flag was set on the command line.
func (f *logFlags) changed(name string) bool {
	return f.cmd != nil && f.cmd.Flags().Changed(name)
}

// merge fills unset flags from the [log] config section.
func (f *logFlags) merge(cfg config.LogConfig) {
	if !f.changed("gitcmd") && cfg.GitCommand != "" {
		f.gitCmd = cfg.GitCommand
	}
	if !f.changed("range") && cfg.Range != "" {
		f.rng = cfg.Range
	}
	if !f.changed("cnode-label-recid") && cfg.RecordID != "" {
		f.recordID = cfg.RecordID
	}
	if !f.changed("builtin") && cfg.Reader == config.ReaderBuiltin {
		f.builtin = true
	}
	f.labelSpec = f.label
	if !f.changed("cnode-label") {
		f.labelSpec = cfg.Label
	}
	if f.labelSpec == "" {
		f.labelSpec = record.DefaultLabelSpec
	}
}

// variables compiles the config variables followed by the -D definitions.
func (f *logFlags) variables(cfg config.LogConfig) ([]record.Variable, error) {
	var out []record.Variable
	for _, v := range cfg.Variables {
		rv, err := record.NewVariable(v.Name, v.Pattern)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config variable")
		}
		out = append(out, rv)
	}
	for _, def := range f.vars {
		name, pattern, ok := strings.Cut(def, "=")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "--define-var %q: want NAME=REGEX", def)
		}
		if err := errors.ValidateVariableName(name); err != nil {
			return nil, err
		}
		rv, err := record.NewVariable(name, pattern)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "--define-var")
		}
		out = append(out, rv)
	}
	return out, nil
}

// sourceOptions returns the log selection shared by the readers. merge must
// have been called.
func (f *logFlags) sourceOptions() source.Options {
	return source.Options{
		Since:         f.since,
		Until:         f.until,
		Range:         f.rng,
		LabelSpec:     f.labelSpec,
		LabelRecordID: f.recordID,
	}
}

// source picks the reader: a kept file, the in-process reader or git.
func (f *logFlags) source() (source.Source, error) {
	opts := f.sourceOptions()
	switch {
	case f.input != "":
		return source.File{Path: f.input, Options: opts}, nil
	case f.builtin:
		return source.OpenRepository(f.repo, opts)
	default:
		return source.GitCommand{Dir: f.repo, Command: f.gitCmd, Options: opts}, nil
	}
}
