package source

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/matzehuels/gitdot/pkg/errors"
)

// GitCommand reads the log by running git. When Command is set it is run
// through "sh -c" as given and the label, since, until and range options are
// ignored.
type GitCommand struct {
	// Dir is the repository directory; empty means the working directory.
	Dir string
	// Command replaces the generated git log command line.
	Command string
	Options Options
}

// Args returns the git arguments of the generated command, without "git".
func (g GitCommand) Args() []string {
	args := []string{"log", "--format=" + g.Options.Format()}
	if g.Options.Since != "" {
		args = append(args, "--since="+g.Options.Since)
	}
	if g.Options.Until != "" {
		args = append(args, "--until="+g.Options.Until)
	}
	rng := g.Options.Range
	if rng == "" {
		rng = DefaultRange
	}
	return append(args, strings.Fields(rng)...)
}

// Warnings lists the options a custom command ignores.
func (g GitCommand) Warnings() []string {
	if g.Command == "" {
		return nil
	}
	var w []string
	if g.Options.LabelSpec != "" {
		w = append(w, "label spec ignored when a custom git command is given")
	}
	if g.Options.Since != "" {
		w = append(w, "--since ignored when a custom git command is given")
	}
	if g.Options.Until != "" {
		w = append(w, "--until ignored when a custom git command is given")
	}
	if g.Options.Range != "" && g.Options.Range != DefaultRange {
		w = append(w, "--range ignored when a custom git command is given")
	}
	return w
}

// Describe implements Source.
func (g GitCommand) Describe() string {
	if g.Command != "" {
		return g.Command
	}
	return "git " + strings.Join(g.Args(), " ")
}

// Read implements Source.
func (g GitCommand) Read(ctx context.Context) ([]byte, error) {
	var cmd *exec.Cmd
	if g.Command != "" {
		cmd = exec.CommandContext(ctx, "sh", "-c", g.Command)
	} else {
		cmd = exec.CommandContext(ctx, "git", g.Args()...)
	}
	cmd.Dir = g.Dir

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.Wrap(errors.ErrCodeCommandFailed, fmt.Errorf("%s", msg), "command failed: %s", g.Describe())
	}
	return out.Bytes(), nil
}
