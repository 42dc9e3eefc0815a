package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/pipeline"
)

// refsCommand creates the refs command.
func (c *CLI) refsCommand() *cobra.Command {
	var (
		flags   logFlags
		pick    bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "refs",
		Short: "List the branches and tags in the commit log",
		Long: `Refs lists every branch and tag decoration found in the log, the names
accepted by generate --choose-branch and --choose-tag.

With --pick the refs are shown in an interactive list and the matching
generate flags are printed for the chosen ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig(flags.repo)
			if err != nil {
				return err
			}
			flags.merge(cfg.Log)
			src, err := flags.source()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg.Cache, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := pipeline.Options{LabelRecordID: flags.recordID}
			data, _, err := runner.ReadLogWithCacheInfo(ctx, src, opts)
			if err != nil {
				return err
			}
			recs, err := pipeline.ParseLog(data, opts)
			if err != nil {
				return err
			}
			refs := collectRefs(recs)
			if len(refs) == 0 {
				return errors.New(errors.ErrCodeNotFound, "no branches or tags in the log")
			}

			if !pick {
				fmt.Fprintln(cmd.OutOrStdout(), renderRefTable(refs, time.Now()))
				return nil
			}

			branches, tags, ok, err := pickRefs(refs)
			if err != nil {
				return err
			}
			if !ok {
				printInfo("Cancelled")
				return nil
			}
			printNextStep("Generate with", chooseFlags(branches, tags)+" git.dot")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&pick, "pick", false, "choose refs interactively and print the generate flags")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the log cache")
	return cmd
}

// chooseFlags renders the generate command line that keeps branches and
// tags.
func chooseFlags(branches, tags []string) string {
	parts := []string{"gitdot generate"}
	for _, b := range branches {
		parts = append(parts, "--choose-branch "+shellQuote(b))
	}
	for _, t := range tags {
		parts = append(parts, "--choose-tag "+shellQuote(t))
	}
	return strings.Join(parts, " ")
}

// shellQuote single-quotes s when it contains anything beyond the
// characters git allows unquoted in simple ref names.
func shellQuote(s string) string {
	if s != "" && strings.Trim(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./") == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
