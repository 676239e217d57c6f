package gitcmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/hunkstage/pkg/procrun"
	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

// DiffCommand runs "git diff": unstaged changes, or staged changes when
// Cached is set.
type DiffCommand struct {
	Cached bool
	// ContextLines overrides the context size when positive.
	ContextLines int
	// NoRenames disables rename detection so hunks line up with
	// "git reset --patch".
	NoRenames bool
	Paths     []string
}

// Args implements Command.
func (c DiffCommand) Args() []string {
	args := []string{"diff", "--no-ext-diff"}

	if c.Cached {
		args = append(args, "--cached")
	}

	if c.NoRenames {
		args = append(args, "--no-renames")
	}

	args = appendContext(args, c.ContextLines)

	if len(c.Paths) > 0 {
		args = append(args, "--")
		args = append(args, c.Paths...)
	}

	return args
}

// Parse implements Command.
func (c DiffCommand) Parse(out procrun.Output) (unidiff.Diff, error) {
	return parseDiff(out.Stdout)
}

// ShowCommand runs "git show" for one revision.
type ShowCommand struct {
	Rev          string
	ContextLines int
}

// Args implements Command.
func (c ShowCommand) Args() []string {
	args := appendContext([]string{"show", "--no-ext-diff"}, c.ContextLines)

	rev := c.Rev
	if rev == "" {
		rev = "HEAD"
	}

	return append(args, rev, "--")
}

// Parse implements Command.
func (c ShowCommand) Parse(out procrun.Output) (unidiff.Diff, error) {
	return parseDiff(out.Stdout)
}

func appendContext(args []string, lines int) []string {
	if lines > 0 {
		args = append(args, "-U"+strconv.Itoa(lines))
	}

	return args
}

func parseDiff(text string) (unidiff.Diff, error) {
	if strings.TrimSpace(text) == "" {
		return unidiff.Diff{}, ErrNoChanges
	}

	return unidiff.Parse(text)
}

// Diff runs a DiffCommand.
func (g *Git) Diff(ctx context.Context, dir string, cmd DiffCommand) (unidiff.Diff, error) {
	return Run[unidiff.Diff](ctx, g, dir, cmd)
}

// Show runs a ShowCommand.
func (g *Git) Show(ctx context.Context, dir string, cmd ShowCommand) (unidiff.Diff, error) {
	return Run[unidiff.Diff](ctx, g, dir, cmd)
}
