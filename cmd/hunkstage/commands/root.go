// Package commands implements the hunkstage CLI commands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hunkstage/pkg/version"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	repoDir    string
	metrics    bool
	verbose    bool
	noColor    bool
}

// NewRootCommand builds the hunkstage command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "hunkstage",
		Short: "Parse unified diffs and stage individual hunks",
		Long: `hunkstage parses git diff output into files, hunks and lines and stages
a chosen subset of hunks by scripting git's interactive patch mode.

Commands:
  parse     Summarise a diff
  verify    Check that a diff parses and reconstructs byte for byte
  stage     Stage selected hunks of the work tree diff
  unstage   Unstage selected hunks of the index diff`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: .hunkstage.yaml in CWD or $HOME)")
	flags.StringVarP(&opts.repoDir, "repo", "C", ".", "run as if started in this directory")
	flags.BoolVar(&opts.metrics, "metrics", false, "print collected metrics in Prometheus text format to stderr on exit")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newParseCommand(opts),
		newVerifyCommand(opts),
		newStageCommand(opts, opStage),
		newStageCommand(opts, opUnstage),
		versionCmd(),
	)

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
