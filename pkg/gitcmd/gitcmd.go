// Package gitcmd builds git argument vectors and parses their output. Every
// command is a value implementing Command[T]: it supplies its arguments and
// turns the captured output into a T.
package gitcmd

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/hunkstage/pkg/procrun"
)

// ErrNoChanges reports a diff or patch session with nothing to show.
var ErrNoChanges = errors.New("no changes")

// DefaultBinary is the git executable used when none is configured.
const DefaultBinary = "git"

// globalArgs pin settings that would change the output format.
var globalArgs = []string{
	"-c", "color.ui=never",
	"-c", "core.pager=cat",
	"-c", "diff.noprefix=false",
	"-c", "diff.mnemonicPrefix=false",
	"-c", "interactive.singleKey=false",
}

// Command is one git subcommand together with its output parser.
type Command[T any] interface {
	Args() []string
	Parse(out procrun.Output) (T, error)
}

// Scripted is implemented by commands that feed standard input.
type Scripted interface {
	Inputs() []string
}

// Git runs commands against a configured executable.
type Git struct {
	runner procrun.Runner
	binary string
	env    []string
}

// New creates a Git. An empty binary means DefaultBinary; env entries are
// added to every invocation.
func New(runner procrun.Runner, binary string, env []string) *Git {
	if binary == "" {
		binary = DefaultBinary
	}

	return &Git{runner: runner, binary: binary, env: slices.Clone(env)}
}

// Run executes cmd in dir and parses its output.
func Run[T any](ctx context.Context, g *Git, dir string, cmd Command[T]) (T, error) {
	var zero T

	args := cmd.Args()

	inv := procrun.Invocation{
		Name: g.binary,
		Args: append(slices.Clone(globalArgs), args...),
		Dir:  dir,
		Env:  g.env,
	}

	if s, ok := cmd.(Scripted); ok {
		inv.Inputs = s.Inputs()
	}

	out, err := g.runner.Run(ctx, inv)
	if err != nil {
		return zero, fmt.Errorf("git %s: %w", subcommand(args), err)
	}

	result, err := cmd.Parse(out)
	if err != nil {
		return zero, fmt.Errorf("git %s: %w", subcommand(args), err)
	}

	return result, nil
}

func subcommand(args []string) string {
	if len(args) == 0 {
		return ""
	}

	return args[0]
}

// literal turns paths into pathspecs that match only themselves.
func literal(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = ":(literal)" + p
	}

	return out
}
