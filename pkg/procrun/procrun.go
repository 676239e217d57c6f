// Package procrun runs child processes whose standard input is a fixed,
// pre-scripted sequence of responses, capturing both output streams.
//
// It is the harness used to drive interactive git commands such as
// "git add --patch" without a terminal.
package procrun

import (
	"context"
	"time"
)

// Invocation describes one child process run.
type Invocation struct {
	// Name is the executable, resolved through PATH when it has no separator.
	Name string

	// Args are passed to the child verbatim, without a shell.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env entries ("KEY=value") are appended to the inherited environment.
	Env []string

	// Inputs are written to standard input as newline-terminated lines.
	Inputs []string
}

// Argv returns the full argument vector including the executable name.
func (inv Invocation) Argv() []string {
	argv := make([]string, 0, len(inv.Args)+1)
	argv = append(argv, inv.Name)

	return append(argv, inv.Args...)
}

// Output holds the captured text of a successful run.
type Output struct {
	Stdout string
	Stderr string
}

// Runner runs an invocation to completion.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Output, error)
}

// Recorder receives one observation per finished process. ExitCode is -1
// when the process could not be started or was killed by a signal.
type Recorder interface {
	RecordProcess(ctx context.Context, name string, exitCode int, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordProcess(context.Context, string, int, time.Duration) {}
