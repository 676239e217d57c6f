package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hunkstage/internal/config"
	"github.com/Sumatoshi-tech/hunkstage/internal/repo"
	"github.com/Sumatoshi-tech/hunkstage/pkg/gitcmd"
	"github.com/Sumatoshi-tech/hunkstage/pkg/stager"
	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

const (
	opStage   = "stage"
	opUnstage = "unstage"
)

type stageOptions struct {
	backend  string
	dryRun   bool
	noVerify bool
}

func newStageCommand(opts *globalOptions, op string) *cobra.Command {
	var so stageOptions

	short := "Stage selected hunks of the work tree diff"
	if op == opUnstage {
		short = "Unstage selected hunks of the index diff"
	}

	cmd := &cobra.Command{
		Use:   op + " SELECTOR...",
		Short: short,
		Long: short + `.

A selector is a path ("main.go"), a path with 1-based hunk numbers
("main.go:1,3" or "main.go:2-4"), or "*" for every hunk. Run
"hunkstage parse" to see the hunk numbers.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return a.runStage(ctx, cmd.OutOrStdout(), op, args, so)
			})
		},
	}

	cmd.Flags().StringVar(&so.backend, "backend", "", "staging backend: patch or apply (default from config)")
	cmd.Flags().BoolVarP(&so.dryRun, "dry-run", "n", false, "print the responses and the patch without touching the index")
	cmd.Flags().BoolVar(&so.noVerify, "no-verify", false, "skip the verification session and the hunk cross-check")

	return cmd
}

func (a *app) runStage(ctx context.Context, w io.Writer, op string, specs []string, so stageOptions) error {
	selectors, err := stager.ParseSelectors(specs)
	if err != nil {
		return err
	}

	backend := so.backend
	if backend == "" {
		backend = a.cfg.Stage.Backend
	}

	if backend != config.BackendPatch && backend != config.BackendApply {
		return config.ErrInvalidBackend
	}

	r, err := repo.Discover(a.repoDir)
	if err != nil {
		return err
	}
	defer r.Free()

	if err := r.CheckIndex(); err != nil {
		return err
	}

	workdir := r.Workdir()

	a.providers.Logger.InfoContext(ctx, op+" requested",
		"workdir", workdir, "branch", r.Branch(), "backend", backend, "selectors", len(selectors))

	d, err := a.stageDiff(ctx, workdir, op, backend)
	if err != nil {
		return err
	}

	d, err = stager.Apply(d, selectors)
	if err != nil {
		return err
	}

	if so.dryRun {
		return writeDryRun(w, d, backend, a.cfg.Stage.Terminator)
	}

	s := stager.New(a.git, a.queue, stager.Options{
		Backend:       stager.Backend(backend),
		Terminator:    a.cfg.Stage.Terminator,
		VerifyPrompts: a.cfg.Stage.VerifyPrompts && !so.noVerify,
		CrossCheck:    a.cfg.Stage.CrossCheck && !so.noVerify,
	},
		stager.WithLogger(a.providers.Logger),
		stager.WithTracer(a.providers.Tracer),
		stager.WithRecorder(a.stageMetrics),
	)

	var res stager.Result

	if op == opUnstage {
		res, err = s.Unstage(ctx, workdir, d)
	} else {
		res, err = s.Stage(ctx, workdir, d)
	}

	if err != nil {
		return err
	}

	writeResult(w, op, res)

	return nil
}

// stageDiff reads the diff the session will walk. Patch mode always splits
// hunks with git's default context, so the configured context only applies
// to the apply backend.
func (a *app) stageDiff(ctx context.Context, workdir, op, backend string) (unidiff.Diff, error) {
	cmd := gitcmd.DiffCommand{}
	if backend == config.BackendApply {
		cmd.ContextLines = a.cfg.Stage.ContextLines
	}

	if op == opUnstage {
		cmd.Cached = true
		cmd.NoRenames = true
	}

	d, err := a.git.Diff(ctx, workdir, cmd)
	if err != nil {
		return unidiff.Diff{}, err
	}

	return d, a.checkSize(len(d.Raw()))
}

func writeDryRun(w io.Writer, d unidiff.Diff, backend, terminator string) error {
	fmt.Fprintf(w, "selected %d of %d hunks\n", d.StagedCount(), d.ChunkCount())

	if backend == config.BackendPatch {
		fmt.Fprintf(w, "responses: %s\n", strings.Join(stager.Script(d, terminator), " "))

		return nil
	}

	_, err := io.WriteString(w, d.StagedPatch())

	return err
}

func writeResult(w io.Writer, op string, res stager.Result) {
	verb := "staged"
	if op == opUnstage {
		verb = "unstaged"
	}

	if res.Selected == 0 {
		color.New(color.FgYellow).Fprintf(w, "nothing %s: no hunk selected\n", verb)

		return
	}

	msg := fmt.Sprintf("%s %d of %d hunks (%s", verb, res.Selected, res.Total, res.Backend)
	if res.Backend == stager.BackendPatch {
		msg += fmt.Sprintf(", %d prompts", res.Prompts)
	}

	color.New(color.FgGreen).Fprintln(w, msg+")")
}
