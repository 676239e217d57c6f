package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hunkstage/internal/repo"
	"github.com/Sumatoshi-tech/hunkstage/pkg/gitcmd"
	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

// ErrDiffTooLarge is returned when a diff exceeds stage.max_diff_size.
var ErrDiffTooLarge = errors.New("diff exceeds stage.max_diff_size")

const stdinPath = "-"

// inputOptions select the git diff read when no file argument is given.
type inputOptions struct {
	cached bool
	rev    string
}

func addInputFlags(cmd *cobra.Command, in *inputOptions) {
	cmd.Flags().BoolVar(&in.cached, "cached", false, "read the index diff (git diff --cached)")
	cmd.Flags().StringVar(&in.rev, "rev", "", "read the diff of a commit (git show REV)")
}

// diffSource describes where a diff came from. branch is set for diffs
// read from a repository whose HEAD is on a branch.
type diffSource struct {
	label  string
	branch string
}

// loadDiff parses the diff in args[0] ("-" for stdin) or, without
// arguments, the diff git reports for the repository.
func (a *app) loadDiff(ctx context.Context, args []string, in inputOptions, stdin io.Reader) (unidiff.Diff, diffSource, error) {
	if len(args) > 0 {
		d, err := a.readDiff(args[0], stdin)

		return d, diffSource{label: args[0]}, err
	}

	workdir, branch, err := a.locate()
	if err != nil {
		return unidiff.Diff{}, diffSource{}, err
	}

	var d unidiff.Diff

	src := diffSource{label: "git diff", branch: branch}

	switch {
	case in.rev != "":
		src.label = "git show " + in.rev
		d, err = a.git.Show(ctx, workdir, gitcmd.ShowCommand{Rev: in.rev, ContextLines: a.cfg.Stage.ContextLines})
	case in.cached:
		src.label = "git diff --cached"
		d, err = a.git.Diff(ctx, workdir, gitcmd.DiffCommand{Cached: true, ContextLines: a.cfg.Stage.ContextLines})
	default:
		d, err = a.git.Diff(ctx, workdir, gitcmd.DiffCommand{ContextLines: a.cfg.Stage.ContextLines})
	}

	if err != nil {
		return unidiff.Diff{}, src, err
	}

	return d, src, a.checkSize(len(d.Raw()))
}

func (a *app) readDiff(path string, stdin io.Reader) (unidiff.Diff, error) {
	var (
		data []byte
		err  error
	)

	if path == stdinPath {
		data, err = a.readLimited(stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return unidiff.Diff{}, fmt.Errorf("read diff: %w", err)
	}

	if err := a.checkSize(len(data)); err != nil {
		return unidiff.Diff{}, err
	}

	return unidiff.Parse(string(data))
}

// readLimited stops one byte past the size limit so checkSize still fires.
func (a *app) readLimited(r io.Reader) ([]byte, error) {
	limit, err := a.cfg.Stage.MaxDiffBytes()
	if err != nil || limit == 0 {
		return io.ReadAll(r)
	}

	return io.ReadAll(io.LimitReader(r, int64(limit)+1))
}

func (a *app) checkSize(n int) error {
	limit, err := a.cfg.Stage.MaxDiffBytes()
	if err != nil {
		return err
	}

	if limit > 0 && uint64(n) > limit {
		return fmt.Errorf("%w: %s read, limit is %s",
			ErrDiffTooLarge, humanize.Bytes(uint64(n)), humanize.Bytes(limit))
	}

	return nil
}

// locate resolves the repository root containing the --repo directory and
// the branch HEAD is on.
func (a *app) locate() (workdir, branch string, err error) {
	r, err := repo.Discover(a.repoDir)
	if err != nil {
		return "", "", err
	}
	defer r.Free()

	return r.Workdir(), r.Branch(), nil
}
